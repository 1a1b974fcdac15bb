package commands

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/ports"
)

var (
	// ErrDispatchCapabilityRequired is returned when an actor without the
	// dispatch capability attempts an explicit assignment.
	ErrDispatchCapabilityRequired = errors.New("dispatch capability is required")

	// ErrDriverNotEligible is returned when the chosen driver is not
	// verified or already carries an active order.
	ErrDriverNotEligible = errors.New("driver is not eligible for assignment")
)

// AssignDriverCommandHandler handles explicit driver assignment by a
// dispatcher. Unlike automatic matching it skips the location freshness
// filter, a dispatcher may put a driver on an order regardless of when the
// driver last reported a position. Verification and the one-active-order
// rule still apply.
type AssignDriverCommandHandler struct {
	uowFactory UoWFactory
	scheduler  AssignmentScheduler
	notifier   ports.NotificationPublisher
	logger     *slog.Logger
}

// NewAssignDriverCommandHandler creates a handler for explicit driver
// assignment.
func NewAssignDriverCommandHandler(
	uowFactory UoWFactory,
	scheduler AssignmentScheduler,
	notifier ports.NotificationPublisher,
	logger *slog.Logger,
) AssignDriverCommandHandler {
	return AssignDriverCommandHandler{
		uowFactory: uowFactory,
		scheduler:  scheduler,
		notifier:   notifier,
		logger:     logger.With("component", "assign_driver"),
	}
}

// Handle processes the explicit assignment command. A successful
// assignment cancels any pending automatic retry for the order.
func (h AssignDriverCommandHandler) Handle(ctx context.Context, cmd AssignDriverCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if !cmd.Actor().Role().CanDispatch() {
		return ErrDispatchCapabilityRequired
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	candidate, err := uow.DriverRepository().Get(ctx, cmd.DriverID())
	if err != nil {
		return err
	}
	if !candidate.IsVerified() {
		return ErrDriverNotEligible
	}

	busy, err := uow.DriverRepository().HasActiveOrder(ctx, cmd.DriverID())
	if err != nil {
		return err
	}
	if busy {
		return ErrDriverNotEligible
	}

	actorID := cmd.Actor().ID()
	if err = aggregate.Assign(cmd.DriverID(), &actorID); err != nil {
		return err
	}

	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.scheduler.Cancel(cmd.OrderID())

	if err = h.notifier.Publish(ctx, ports.Notification{
		Kind:        ports.NotificationDriverAssignment,
		RecipientID: cmd.DriverID(),
		OrderID:     cmd.OrderID(),
	}); err != nil {
		h.logger.Warn("driver assignment notification failed",
			"orderId", cmd.OrderID(), "driverId", cmd.DriverID(), "error", err)
	}

	return nil
}
