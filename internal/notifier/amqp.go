package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const confirmationQueueName = "email.confirmation"

// AMQPNotifier publishes confirmation emails to a durable RabbitMQ queue.
// Messages are marked persistent so they survive broker restarts; the mail
// worker on the other end renders and sends the actual email.
type AMQPNotifier struct {
	url    string
	logger *slog.Logger
}

func NewAMQPNotifier(url string, logger *slog.Logger) *AMQPNotifier {
	return &AMQPNotifier{url: url, logger: logger}
}

func (n *AMQPNotifier) SendConfirmation(ctx context.Context, username, email, code string) error {
	msg := ConfirmationMessage{
		Username: username,
		Email:    email,
		Subject:  "Your signup confirmation code",
		Body:     fmt.Sprintf("Hello %s,\n\nYour signup confirmation code is: %s\n", username, code),
	}

	if err := n.publish(ctx, msg); err != nil {
		n.logger.Error("confirmation publish failed", "email", email, "error", err)
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}

func (n *AMQPNotifier) publish(ctx context.Context, msg ConfirmationMessage) error {
	conn, err := amqp.Dial(n.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		confirmationQueueName, // name
		true,                  // durable
		false,                 // autoDelete
		false,                 // exclusive
		false,                 // noWait
		nil,                   // args
	); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",                    // default exchange
		confirmationQueueName, // routing key = queue name
		false,                 // mandatory
		false,                 // immediate
		pub,
	); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}
