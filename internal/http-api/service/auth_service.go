package service

import (
	"context"
	"errors"
	"time"

	"reviewhub/internal/config"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/validation"
	"reviewhub/internal/middleware/auth"
	"reviewhub/internal/notifier"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// Claims carries the actor identity inside the bearer token.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Signup(ctx context.Context, username, email string) (*models.User, error)
	ObtainToken(ctx context.Context, username, confirmationCode string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	userRepo  repository.UserRepository
	notifier  notifier.Notifier
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(userRepo repository.UserRepository, n notifier.Notifier, cfg *config.Config) AuthService {
	return &authService{
		userRepo:  userRepo,
		notifier:  n,
		jwtSecret: cfg.JWTSecret,
		tokenTTL:  cfg.TokenTTL,
	}
}

// Signup registers an identity pair and dispatches a fresh confirmation code.
// Posting the exact same (username, email) pair again reuses the account and
// issues a new code; a pair that collides with a different account fails.
func (s *authService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	if err := validation.Username(username); err != nil {
		return nil, invalidField("username", err)
	}

	byEmail, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	byUsername, err := s.userRepo.FindByUsername(username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if byEmail != nil && byEmail.Username != username {
		return nil, ErrIdentityMismatch
	}
	if byUsername != nil && byUsername.Email != email {
		return nil, ErrIdentityMismatch
	}

	user := byUsername
	if user == nil {
		user = &models.User{
			Username: username,
			Email:    email,
			Role:     models.RoleUser,
		}
	}

	code, err := auth.GenerateConfirmationCode()
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashConfirmationCode(code)
	if err != nil {
		return nil, err
	}
	user.ConfirmationCode = hash

	if user.ID == "" {
		err = s.userRepo.Create(user)
	} else {
		err = s.userRepo.Update(user)
	}
	if err != nil {
		// the unique indexes are the authority under concurrent signups
		if repository.IsUniqueViolation(err) {
			return nil, ErrIdentityMismatch
		}
		return nil, err
	}

	if err := s.notifier.SendConfirmation(ctx, user.Username, user.Email, code); err != nil {
		return nil, err
	}

	return user, nil
}

// ObtainToken exchanges a username plus confirmation code for a bearer token.
// The stored code is not rotated on use; re-confirmation with the same code
// is accepted.
func (s *authService) ObtainToken(ctx context.Context, username, confirmationCode string) (string, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if user.ConfirmationCode == "" {
		return "", ErrInvalidConfirmationCode
	}
	if err := auth.VerifyConfirmationCode(user.ConfirmationCode, confirmationCode); err != nil {
		return "", ErrInvalidConfirmationCode
	}

	return s.generateToken(user)
}

func (s *authService) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
