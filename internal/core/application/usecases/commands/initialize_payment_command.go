package commands

import (
	"errors"
	"net/mail"

	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrInitializePaymentCommandIsNotConstructed is returned when using an
// improperly initialized InitializePaymentCommand.
var ErrInitializePaymentCommandIsNotConstructed = errors.New(
	"InitializePaymentCommand must be created via NewInitializePaymentCommand constructor",
)

// InitializePaymentCommand represents a request to start checkout for an
// order. Carries the order, the requesting actor, and the email the
// gateway sends the receipt to.
type InitializePaymentCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actor   account.Actor
	email   string

	guard guard.ConstructorGuard
}

// NewInitializePaymentCommand creates a command to start checkout.
func NewInitializePaymentCommand(
	orderID kernel.UUID,
	actor account.Actor,
	email string,
) (InitializePaymentCommand, error) {
	cmd := InitializePaymentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setActor(actor),
		cmd.setEmail(email),
	); err != nil {
		return InitializePaymentCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c InitializePaymentCommand) Validate() error {
	return c.guard.Validate(ErrInitializePaymentCommandIsNotConstructed)
}

// OrderID returns the order being paid for.
func (c InitializePaymentCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Actor returns the requesting actor.
func (c InitializePaymentCommand) Actor() account.Actor {
	return c.actor
}

// Email returns the customer email passed to the gateway.
func (c InitializePaymentCommand) Email() string {
	return c.email
}

func (c *InitializePaymentCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *InitializePaymentCommand) setActor(actor account.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	c.actor = actor
	return nil
}

func (c *InitializePaymentCommand) setEmail(email string) error {
	if email == "" {
		return errs.NewValueIsRequiredError("email")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("email", err)
	}
	c.email = email
	return nil
}
