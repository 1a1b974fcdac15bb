package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
)

// NotificationKind identifies the template a downstream worker renders.
type NotificationKind string

// Notification kinds emitted by the order lifecycle.
const (
	NotificationOrderConfirmation NotificationKind = "order_confirmation"
	NotificationDriverAssignment  NotificationKind = "driver_assignment"
	NotificationPaymentSuccess    NotificationKind = "payment_success"
)

// Notification is a best-effort message to a user about an order event.
// Rendering and delivery happen in a separate worker that consumes the
// notifications topic.
type Notification struct {
	Kind        NotificationKind
	RecipientID kernel.UUID
	OrderID     kernel.UUID
	// DriverID carries optional driver context, for example the driver
	// mentioned in a payment-success message. Nil when not applicable.
	DriverID *kernel.UUID
}

// NotificationPublisher publishes lifecycle notifications. Publishing is
// best effort: callers log a returned error and continue, a notification
// failure must never fail the order operation that produced it.
type NotificationPublisher interface {
	Publish(ctx context.Context, notification Notification) error
}
