package commands

import (
	"context"
	"errors"
	"fmt"
	"math"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// ErrOrderAccessDenied is returned when an actor operates on an order they
// neither own nor have the dispatch capability over.
var ErrOrderAccessDenied = errors.New("actor has no access to this order")

// InitializePaymentCommandHandler starts checkout for an order: it
// registers the charge with the payment gateway under a deterministic
// reference and stores that reference on the order.
//
// The gateway charges in minor currency units, so the stored price is
// multiplied by 100. The reference is "order_<uuid>", which lets support
// staff correlate gateway dashboards with orders directly.
type InitializePaymentCommandHandler struct {
	uowFactory OrderUoWFactory
	gateway    ports.PaymentGateway
}

// NewInitializePaymentCommandHandler creates a handler for checkout
// initialization.
func NewInitializePaymentCommandHandler(
	uowFactory OrderUoWFactory,
	gateway ports.PaymentGateway,
) InitializePaymentCommandHandler {
	return InitializePaymentCommandHandler{
		uowFactory: uowFactory,
		gateway:    gateway,
	}
}

// Handle processes the checkout initialization command and returns the
// gateway checkout intent for the customer to complete. Only the order's
// customer or an actor with the dispatch capability may initialize payment,
// and only for non-terminal, not-yet-verified orders.
func (h InitializePaymentCommandHandler) Handle(
	ctx context.Context,
	cmd InitializePaymentCommand,
) (ports.PaymentIntent, error) {
	if err := cmd.Validate(); err != nil {
		return ports.PaymentIntent{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ports.PaymentIntent{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return ports.PaymentIntent{}, err
	}

	actor := cmd.Actor()
	if !aggregate.CustomerID().IsEqual(actor.ID()) && !actor.Role().CanDispatch() {
		return ports.PaymentIntent{}, ErrOrderAccessDenied
	}

	if aggregate.Status().IsTerminal() {
		return ports.PaymentIntent{}, fmt.Errorf(
			"%w: cannot pay for %s order", order.ErrInvalidState, aggregate.Status())
	}
	if aggregate.IsVerified() {
		return ports.PaymentIntent{}, fmt.Errorf(
			"%w: payment already confirmed", order.ErrInvalidState)
	}

	reference := PaymentReference(aggregate.ID())
	amountMinor := int64(math.Round(aggregate.Price() * 100))

	intent, err := h.gateway.Initialize(ctx, reference, amountMinor, cmd.Email())
	if err != nil {
		return ports.PaymentIntent{}, err
	}

	if err = aggregate.AttachPaymentReference(intent.Reference); err != nil {
		return ports.PaymentIntent{}, err
	}

	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return ports.PaymentIntent{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return ports.PaymentIntent{}, err
	}

	return intent, nil
}

// PaymentReference builds the deterministic gateway reference for an order.
func PaymentReference(orderID kernel.UUID) string {
	return "order_" + orderID.String()
}
