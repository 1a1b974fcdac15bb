package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// ConfirmPaymentCommandHandler verifies a checkout with the gateway and,
// on success, marks the order as paid and immediately tries to match a
// driver. When nobody is available the order is handed to the retry
// scheduler instead of failing the request.
//
// Example:
//
//	cmd, _ := NewConfirmPaymentCommand("order_" + orderID.String())
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    switch {
//	    case errors.Is(err, ports.ErrPaymentDeclined):
//	        // charge did not go through, customer should retry checkout
//	    case errors.Is(err, ports.ErrPaymentGatewayTimeout):
//	        // verdict unknown, safe to call again
//	    }
//	}
type ConfirmPaymentCommandHandler struct {
	uowFactory OrderUoWFactory
	gateway    ports.PaymentGateway
	autoAssign AutoAssignOrderCommandHandler
	scheduler  AssignmentScheduler
	notifier   ports.NotificationPublisher
	logger     *slog.Logger
}

// NewConfirmPaymentCommandHandler creates a handler for checkout
// verification.
func NewConfirmPaymentCommandHandler(
	uowFactory OrderUoWFactory,
	gateway ports.PaymentGateway,
	autoAssign AutoAssignOrderCommandHandler,
	scheduler AssignmentScheduler,
	notifier ports.NotificationPublisher,
	logger *slog.Logger,
) ConfirmPaymentCommandHandler {
	return ConfirmPaymentCommandHandler{
		uowFactory: uowFactory,
		gateway:    gateway,
		autoAssign: autoAssign,
		scheduler:  scheduler,
		notifier:   notifier,
		logger:     logger.With("component", "confirm_payment"),
	}
}

// Handle processes the checkout verification command.
//
// Verification is idempotent: confirming an already-verified order is a
// no-op, so gateway webhook retries and customer refreshes are harmless.
// The gateway's reported amount must match the order's price in minor
// units; a mismatch is treated as a declined payment.
func (h ConfirmPaymentCommandHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	verification, err := h.gateway.Verify(ctx, cmd.Reference())
	if err != nil {
		return err
	}

	orderID, customerID, err := h.markVerified(ctx, cmd.Reference(), verification)
	if err != nil {
		return err
	}

	driverID := h.tryMatch(ctx, orderID)

	if err = h.notifier.Publish(ctx, ports.Notification{
		Kind:        ports.NotificationPaymentSuccess,
		RecipientID: customerID,
		OrderID:     orderID,
		DriverID:    driverID,
	}); err != nil {
		h.logger.Warn("payment success notification failed",
			"orderId", orderID, "error", err)
	}

	return nil
}

// markVerified flags the order as paid in its own transaction and returns
// the order and customer identifiers for the follow-up steps.
func (h ConfirmPaymentCommandHandler) markVerified(
	ctx context.Context,
	reference string,
	verification ports.PaymentVerification,
) (kernel.UUID, kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().GetByPaymentReference(ctx, reference)
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}

	expectedMinor := int64(math.Round(aggregate.Price() * 100))
	if verification.AmountMinor != expectedMinor {
		return kernel.UUID{}, kernel.UUID{}, fmt.Errorf(
			"%w: charged amount %d does not match expected %d",
			ports.ErrPaymentDeclined, verification.AmountMinor, expectedMinor)
	}

	if aggregate.IsVerified() {
		return aggregate.ID(), aggregate.CustomerID(), nil
	}

	if err = aggregate.MarkVerified(); err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}

	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}

	return aggregate.ID(), aggregate.CustomerID(), nil
}

// tryMatch runs one immediate matching attempt and falls back to the retry
// scheduler. Matching problems never fail a confirmed payment; the retry
// loop owns the eventual outcome.
func (h ConfirmPaymentCommandHandler) tryMatch(ctx context.Context, orderID kernel.UUID) *kernel.UUID {
	attempt, err := NewAutoAssignOrderCommand(orderID)
	if err != nil {
		h.logger.Error("building matching attempt failed", "orderId", orderID, "error", err)
		return nil
	}

	driverID, err := h.autoAssign.Handle(ctx, attempt)
	switch {
	case err == nil:
		return &driverID
	case errors.Is(err, ErrOrderNotAwaitingAssignment):
		return nil
	case errors.Is(err, services.ErrNoDriverAvailable):
		h.scheduler.Schedule(orderID)
		return nil
	default:
		h.logger.Warn("matching attempt failed, scheduling retry",
			"orderId", orderID, "error", err)
		h.scheduler.Schedule(orderID)
		return nil
	}
}
