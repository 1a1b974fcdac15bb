package commands

import (
	"errors"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrConfirmPaymentCommandIsNotConstructed is returned when using an
// improperly initialized ConfirmPaymentCommand.
var ErrConfirmPaymentCommandIsNotConstructed = errors.New(
	"ConfirmPaymentCommand must be created via NewConfirmPaymentCommand constructor",
)

// ConfirmPaymentCommand represents a request to verify a completed
// checkout with the gateway, identified by the payment reference issued at
// initialization.
type ConfirmPaymentCommand struct { //nolint:recvcheck //using for validation
	reference string

	guard guard.ConstructorGuard
}

// NewConfirmPaymentCommand creates a command to verify a checkout.
func NewConfirmPaymentCommand(reference string) (ConfirmPaymentCommand, error) {
	cmd := ConfirmPaymentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setReference(reference); err != nil {
		return ConfirmPaymentCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ConfirmPaymentCommand) Validate() error {
	return c.guard.Validate(ErrConfirmPaymentCommandIsNotConstructed)
}

// Reference returns the gateway payment reference.
func (c ConfirmPaymentCommand) Reference() string {
	return c.reference
}

func (c *ConfirmPaymentCommand) setReference(reference string) error {
	if reference == "" {
		return errs.NewValueIsRequiredError("reference")
	}
	c.reference = reference
	return nil
}
