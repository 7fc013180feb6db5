package service

import "errors"

// Sentinel errors shared across services. Handlers translate these into the
// HTTP error taxonomy; anything unrecognized becomes a 500.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrTitleNotFound    = errors.New("title not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrGenreNotFound    = errors.New("genre not found")
	ErrCategoryNotFound = errors.New("category not found")

	ErrNameInUse       = errors.New("username already in use")
	ErrEmailInUse      = errors.New("email already in use")
	ErrSlugInUse       = errors.New("slug already in use")
	ErrAlreadyReviewed = errors.New("you have already reviewed this title")

	// ErrIdentityMismatch covers the signup cross-pair rule: the email belongs
	// to a different username, or the username is registered with a different
	// email. Re-signup with the exact stored pair stays idempotent.
	ErrIdentityMismatch = errors.New("username and email do not match an existing account")

	ErrInvalidConfirmationCode = errors.New("invalid confirmation code")
	ErrPermissionDenied        = errors.New("you don't have permission to modify this object")

	ErrInvalidToken = errors.New("invalid token")
)

// ValidationError marks an InvalidInput failure on a named field so handlers
// can report it field-scoped.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalidField(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}
