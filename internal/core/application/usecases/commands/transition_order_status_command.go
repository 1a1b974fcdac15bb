package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

// ErrTransitionOrderStatusCommandIsNotConstructed is returned when using
// an improperly initialized TransitionOrderStatusCommand.
var ErrTransitionOrderStatusCommandIsNotConstructed = errors.New(
	"TransitionOrderStatusCommand must be created via NewTransitionOrderStatusCommand constructor",
)

// TransitionOrderStatusCommand represents an actor's request to move an
// order to the next lifecycle status: pickup, delivery, failure, or
// cancellation.
type TransitionOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	next    order.Status
	actor   account.Actor

	guard guard.ConstructorGuard
}

// NewTransitionOrderStatusCommand creates a lifecycle transition command.
func NewTransitionOrderStatusCommand(
	orderID kernel.UUID,
	next order.Status,
	actor account.Actor,
) (TransitionOrderStatusCommand, error) {
	cmd := TransitionOrderStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setNext(next),
		cmd.setActor(actor),
	); err != nil {
		return TransitionOrderStatusCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c TransitionOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderStatusCommandIsNotConstructed)
}

// OrderID returns the order to transition.
func (c TransitionOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Next returns the requested target status.
func (c TransitionOrderStatusCommand) Next() order.Status {
	return c.next
}

// Actor returns the requesting actor.
func (c TransitionOrderStatusCommand) Actor() account.Actor {
	return c.actor
}

func (c *TransitionOrderStatusCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *TransitionOrderStatusCommand) setNext(next order.Status) error {
	if err := next.Validate(); err != nil {
		return err
	}
	c.next = next
	return nil
}

func (c *TransitionOrderStatusCommand) setActor(actor account.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	c.actor = actor
	return nil
}
