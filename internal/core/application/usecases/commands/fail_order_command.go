package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

// ErrFailOrderCommandIsNotConstructed is returned when using an improperly
// initialized FailOrderCommand.
var ErrFailOrderCommandIsNotConstructed = errors.New(
	"FailOrderCommand must be created via NewFailOrderCommand constructor",
)

// FailOrderCommand represents the system giving up on an order, issued by
// the retry scheduler when matching attempts are exhausted. There is no
// actor; the resulting audit entry carries a null actor reference.
type FailOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewFailOrderCommand creates a system failure command for the given order.
func NewFailOrderCommand(orderID kernel.UUID) (FailOrderCommand, error) {
	cmd := FailOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setOrderID(orderID); err != nil {
		return FailOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c FailOrderCommand) Validate() error {
	return c.guard.Validate(ErrFailOrderCommandIsNotConstructed)
}

// OrderID returns the order to fail.
func (c FailOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c *FailOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}
