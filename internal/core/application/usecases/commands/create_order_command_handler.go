package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// CreateOrderCommandHandler handles the business logic for placing orders.
// Computes the price from the current tariff, persists the order in the
// created status, and sends a best-effort confirmation notification.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	pricing    services.PricingCalculator
	notifier   ports.NotificationPublisher
	logger     *slog.Logger
}

// NewCreateOrderCommandHandler creates a handler for order placement.
func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	pricing services.PricingCalculator,
	notifier ports.NotificationPublisher,
	logger *slog.Logger,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		pricing:    pricing,
		notifier:   notifier,
		logger:     logger.With("component", "create_order"),
	}
}

// Handle processes the order placement command. The price is computed once
// here and stored with the order; later tariff changes never reprice an
// existing order. The confirmation notification goes out after the commit,
// and a publish failure is logged but does not fail the command.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	price, err := h.pricing.CalculatePrice(cmd.Pickup(), cmd.Delivery(), cmd.Package())
	if err != nil {
		return err
	}

	aggregate, err := order.NewOrder(
		cmd.OrderID(),
		cmd.CustomerID(),
		cmd.Pickup(),
		cmd.Delivery(),
		cmd.Package(),
		price,
		cmd.GoodsImagePath(),
	)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if err = h.notifier.Publish(ctx, ports.Notification{
		Kind:        ports.NotificationOrderConfirmation,
		RecipientID: cmd.CustomerID(),
		OrderID:     cmd.OrderID(),
	}); err != nil {
		h.logger.Warn("order confirmation notification failed",
			"orderId", cmd.OrderID(), "error", err)
	}

	return nil
}
