package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ErrOrderNotAwaitingAssignment is returned when a matching attempt finds
// the order no longer eligible: not payment-verified, already assigned, or
// moved to another status. The retry scheduler stops the loop on this
// error.
var ErrOrderNotAwaitingAssignment = errors.New("order is not awaiting assignment")

// MatchingConfig carries the tunables of automatic driver matching.
type MatchingConfig struct {
	// LocationFreshness is how recent a driver's last location report
	// must be for the driver to count as available.
	LocationFreshness time.Duration
}

// Validate ensures the matching window is positive.
func (c MatchingConfig) Validate() error {
	if c.LocationFreshness <= 0 {
		return errs.NewValueIsInvalidError("locationFreshness")
	}
	return nil
}

// AutoAssignOrderCommandHandler performs one automatic matching attempt:
// load the order, snapshot the available drivers, pick the nearest to the
// pickup point, and assign. Candidate filtering happens entirely in the
// repository query so availability is decided exactly once per attempt.
//
// Returns the assigned driver's ID on success, ErrNoDriverAvailable when
// nobody qualifies right now, and ErrOrderNotAwaitingAssignment when the
// order left the matchable state.
type AutoAssignOrderCommandHandler struct {
	uowFactory UoWFactory
	dispatcher services.DriverDispatcher
	matching   MatchingConfig
	notifier   ports.NotificationPublisher
	logger     *slog.Logger
}

// NewAutoAssignOrderCommandHandler creates a handler for automatic
// matching attempts.
func NewAutoAssignOrderCommandHandler(
	uowFactory UoWFactory,
	matching MatchingConfig,
	notifier ports.NotificationPublisher,
	logger *slog.Logger,
) (AutoAssignOrderCommandHandler, error) {
	if err := matching.Validate(); err != nil {
		return AutoAssignOrderCommandHandler{}, err
	}

	return AutoAssignOrderCommandHandler{
		uowFactory: uowFactory,
		dispatcher: services.NewDriverDispatcher(),
		matching:   matching,
		notifier:   notifier,
		logger:     logger.With("component", "auto_assign"),
	}, nil
}

// Handle processes one matching attempt inside its own transaction.
func (h AutoAssignOrderCommandHandler) Handle(
	ctx context.Context,
	cmd AutoAssignOrderCommand,
) (kernel.UUID, error) {
	if err := cmd.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return kernel.UUID{}, err
	}

	if !aggregate.IsVerified() || aggregate.Status() != order.Created || aggregate.Driver() != nil {
		return kernel.UUID{}, ErrOrderNotAwaitingAssignment
	}

	reportedSince := time.Now().UTC().Add(-h.matching.LocationFreshness)
	candidates, err := uow.DriverRepository().GetAvailable(ctx, reportedSince)
	if err != nil {
		return kernel.UUID{}, err
	}

	nearest, err := h.dispatcher.FindNearest(aggregate.Pickup(), candidates)
	if err != nil {
		return kernel.UUID{}, err
	}

	driverID := nearest.ID()
	if err = aggregate.Assign(driverID, &driverID); err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, err
	}

	if err = h.notifier.Publish(ctx, ports.Notification{
		Kind:        ports.NotificationDriverAssignment,
		RecipientID: driverID,
		OrderID:     aggregate.ID(),
	}); err != nil {
		h.logger.Warn("driver assignment notification failed",
			"orderId", aggregate.ID(), "driverId", driverID, "error", err)
	}

	return driverID, nil
}
