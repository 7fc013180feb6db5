package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// codeSpace bounds the 6-digit confirmation code range.
var codeSpace = big.NewInt(1000000)

// GenerateConfirmationCode draws a 6-digit code from crypto/rand.
func GenerateConfirmationCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n), nil
}

// HashConfirmationCode creates a bcrypt hash from the given plaintext code.
func HashConfirmationCode(code string) (string, error) {
	// the cost determines the computational complexity of the hashing process
	// higher cost means more security but also more processing time
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyConfirmationCode checks if the provided plaintext code matches the stored bcrypt hash.
func VerifyConfirmationCode(hashedCode, providedCode string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedCode), []byte(providedCode))
}
