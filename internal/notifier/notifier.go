package notifier

import (
	"context"
	"errors"
)

// ErrDelivery is returned when the confirmation message could not be handed
// to the transport. Handlers surface it as a bad-gateway condition.
var ErrDelivery = errors.New("confirmation delivery failed")

// ConfirmationMessage is the payload the mail worker consumes. The code
// travels only over the broker; it is never written to an HTTP response.
type ConfirmationMessage struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
}

// Notifier dispatches signup confirmation codes out of process.
type Notifier interface {
	SendConfirmation(ctx context.Context, username, email, code string) error
}
