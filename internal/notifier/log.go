package notifier

import (
	"context"
	"log/slog"
)

// LogNotifier writes confirmation dispatches to the structured log instead of
// a broker. Used in development when no AMQP URL is configured. The code
// itself never reaches the log.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendConfirmation(ctx context.Context, username, email, code string) error {
	n.logger.Info("confirmation code issued", "username", username, "email", email)
	return nil
}
