package commands

import (
	"context"
)

// FailOrderCommandHandler moves an order to the failed status on behalf of
// the system. Orders that already reached a terminal status are rejected by
// the aggregate, so a late exhaustion tick cannot clobber a delivery or a
// cancellation.
type FailOrderCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewFailOrderCommandHandler creates a handler for system-initiated order
// failure.
func NewFailOrderCommandHandler(uowFactory OrderUoWFactory) FailOrderCommandHandler {
	return FailOrderCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the failure command.
func (h FailOrderCommandHandler) Handle(ctx context.Context, cmd FailOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
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

	if err = aggregate.MarkFailed(); err != nil {
		return err
	}

	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
