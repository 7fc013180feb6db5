package dto

// Data Transfer Objects for signup and token requests and responses

// SignupRequest: payload for account signup. Re-posting the same pair is
// idempotent; a fresh confirmation code is issued each time.
type SignupRequest struct {
	Username string `json:"username" binding:"required,max=150,username"`
	Email    string `json:"email" binding:"required,email,max=254"`
}

// SignupResponse echoes the identity pair. The confirmation code goes out
// via the notifier only, never in the response body.
type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest: payload for exchanging a confirmation code for a token
type TokenRequest struct {
	Username         string `json:"username" binding:"required"`
	ConfirmationCode string `json:"confirmation_code" binding:"required"`
}

// TokenResponse: bearer token payload after successful confirmation
type TokenResponse struct {
	Token string `json:"token"`
}
