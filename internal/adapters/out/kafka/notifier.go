// Package kafka publishes customer-facing notification events to a Kafka
// topic. Downstream consumers (mailers, push senders) own the actual
// delivery channels; this adapter only emits the event.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
)

// Config holds the connection settings of the notification topic.
type Config struct {
	Brokers []string
	Topic   string
}

// Validate checks that the configuration is complete.
func (c Config) Validate() error {
	if len(c.Brokers) == 0 {
		return errs.NewValueIsRequiredError("brokers")
	}
	for _, broker := range c.Brokers {
		if broker == "" {
			return errs.NewValueIsRequiredError("brokers")
		}
	}
	if c.Topic == "" {
		return errs.NewValueIsRequiredError("topic")
	}
	return nil
}

// notificationMessage is the wire format of one notification event.
type notificationMessage struct {
	Kind        string    `json:"kind"`
	RecipientID string    `json:"recipient_id"`
	OrderID     string    `json:"order_id"`
	DriverID    *string   `json:"driver_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Notifier implements ports.NotificationPublisher on top of a Kafka
// topic. Messages are keyed by recipient so one recipient's
// notifications stay ordered.
type Notifier struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewNotifier creates a notification publisher for the given topic.
func NewNotifier(cfg Config, logger *slog.Logger) (*Notifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		MaxAttempts:            5,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
		Async:                  false,
		AllowAutoTopicCreation: true,
	}

	return &Notifier{
		writer: writer,
		logger: logger.With("component", "kafka_notifier"),
	}, nil
}

// Publish emits one notification event. Callers treat delivery as best
// effort, so a returned error must never fail the business operation that
// triggered it.
func (n *Notifier) Publish(ctx context.Context, notification ports.Notification) error {
	message := notificationMessage{
		Kind:        string(notification.Kind),
		RecipientID: notification.RecipientID.String(),
		OrderID:     notification.OrderID.String(),
		OccurredAt:  time.Now().UTC(),
	}
	if notification.DriverID != nil {
		driverID := notification.DriverID.String()
		message.DriverID = &driverID
	}

	value, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(message.RecipientID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("write notification: %w", err)
	}

	n.logger.Debug("notification published",
		"kind", message.Kind,
		"order_id", message.OrderID,
		"recipient_id", message.RecipientID,
	)
	return nil
}

// Close flushes buffered messages and releases the writer.
func (n *Notifier) Close() error {
	return n.writer.Close()
}
