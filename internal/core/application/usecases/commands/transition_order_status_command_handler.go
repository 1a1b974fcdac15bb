package commands

import (
	"context"

	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/order"
)

// TransitionOrderStatusCommandHandler applies role-gated lifecycle
// transitions: drivers report pickup, delivery, and failure; customers and
// dispatchers cancel.
//
// Two authorization layers apply. The status machine enforces which role
// may request which target; this handler additionally enforces ownership:
// a driver may only move orders assigned to them, and a customer may only
// cancel their own orders. Dispatch-capable actors are not ownership
// restricted.
type TransitionOrderStatusCommandHandler struct {
	uowFactory OrderUoWFactory
	scheduler  AssignmentScheduler
}

// NewTransitionOrderStatusCommandHandler creates a handler for lifecycle
// transitions.
func NewTransitionOrderStatusCommandHandler(
	uowFactory OrderUoWFactory,
	scheduler AssignmentScheduler,
) TransitionOrderStatusCommandHandler {
	return TransitionOrderStatusCommandHandler{
		uowFactory: uowFactory,
		scheduler:  scheduler,
	}
}

// Handle processes the transition command. A successful transition cancels
// any pending automatic retry, the order is no longer in the created
// status afterwards.
func (h TransitionOrderStatusCommandHandler) Handle(
	ctx context.Context,
	cmd TransitionOrderStatusCommand,
) error {
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

	if err = checkOwnership(aggregate, cmd.Actor()); err != nil {
		return err
	}

	if err = aggregate.TransitionTo(cmd.Next(), cmd.Actor()); err != nil {
		return err
	}

	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.scheduler.Cancel(cmd.OrderID())
	return nil
}

func checkOwnership(aggregate *order.Order, actor account.Actor) error {
	switch actor.Role() {
	case account.RoleDriver:
		if aggregate.Driver() == nil || !aggregate.Driver().IsEqual(actor.ID()) {
			return ErrOrderAccessDenied
		}
	case account.RoleCustomer:
		if !aggregate.CustomerID().IsEqual(actor.ID()) {
			return ErrOrderAccessDenied
		}
	case account.RoleDispatcher, account.RoleAdmin:
		// unrestricted
	case account.RoleUnknown:
		return ErrOrderAccessDenied
	}
	return nil
}
