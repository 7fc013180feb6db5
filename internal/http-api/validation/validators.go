package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	MaxUsernameLength = 150
	MaxEmailLength    = 254
)

// usernamePattern mirrors the account identifier charset: word characters
// plus the . @ + - punctuation, nothing else.
var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var (
	ErrReservedUsername = errors.New(`username "me" is reserved`)
	ErrInvalidUsername  = errors.New("username may only contain letters, digits and . @ + -")
	ErrUsernameTooLong  = fmt.Errorf("username must be at most %d characters", MaxUsernameLength)
	ErrEmptyText        = errors.New("text must not be blank")
)

// Username rejects the reserved name "me" (case-insensitive) and anything
// outside the allowed pattern or length.
func Username(value string) error {
	if value == "" {
		return ErrInvalidUsername
	}
	if strings.EqualFold(value, "me") {
		return ErrReservedUsername
	}
	if len(value) > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	if !usernamePattern.MatchString(value) {
		return ErrInvalidUsername
	}
	return nil
}

// Year rejects release years in the future.
func Year(value int) error {
	if current := time.Now().Year(); value > current {
		return fmt.Errorf("year %d is in the future (current year is %d)", value, current)
	}
	return nil
}

// CommentText rejects text that is empty after trimming whitespace.
func CommentText(value string) error {
	if strings.TrimSpace(value) == "" {
		return ErrEmptyText
	}
	return nil
}
