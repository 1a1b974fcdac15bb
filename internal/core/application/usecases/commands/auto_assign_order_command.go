package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

// ErrAutoAssignOrderCommandIsNotConstructed is returned when using an
// improperly initialized AutoAssignOrderCommand.
var ErrAutoAssignOrderCommandIsNotConstructed = errors.New(
	"AutoAssignOrderCommand must be created via NewAutoAssignOrderCommand constructor",
)

// AutoAssignOrderCommand represents a single automatic matching attempt
// for one order. Issued right after payment confirmation and again by the
// retry scheduler on each tick.
type AutoAssignOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewAutoAssignOrderCommand creates a matching attempt command for the
// given order.
func NewAutoAssignOrderCommand(orderID kernel.UUID) (AutoAssignOrderCommand, error) {
	cmd := AutoAssignOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setOrderID(orderID); err != nil {
		return AutoAssignOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AutoAssignOrderCommand) Validate() error {
	return c.guard.Validate(ErrAutoAssignOrderCommandIsNotConstructed)
}

// OrderID returns the order to match.
func (c AutoAssignOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c *AutoAssignOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}
