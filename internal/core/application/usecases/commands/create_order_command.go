package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

// ErrCreateOrderCommandIsNotConstructed is returned when using an
// improperly initialized CreateOrderCommand.
var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a request to place a new delivery order.
// Encapsulates the route, the parcel, and an optional pre-stored goods
// image path.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), customerID, pickup, delivery, pkg, nil)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID        kernel.UUID
	customerID     kernel.UUID
	pickup         kernel.GeoPoint
	delivery       kernel.GeoPoint
	pkg            order.Package
	goodsImagePath *string

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to place a new order. All value
// objects must already be constructed; goodsImagePath may be nil when the
// customer attached no image.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	customerID kernel.UUID,
	pickup kernel.GeoPoint,
	delivery kernel.GeoPoint,
	pkg order.Package,
	goodsImagePath *string,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		goodsImagePath: goodsImagePath,
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCustomerID(customerID),
		cmd.setPickup(pickup),
		cmd.setDelivery(delivery),
		cmd.setPackage(pkg),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the identifier for the new order.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CustomerID returns the customer placing the order.
func (c CreateOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

// Pickup returns the pickup point.
func (c CreateOrderCommand) Pickup() kernel.GeoPoint {
	return c.pickup
}

// Delivery returns the delivery point.
func (c CreateOrderCommand) Delivery() kernel.GeoPoint {
	return c.delivery
}

// Package returns the parcel details.
func (c CreateOrderCommand) Package() order.Package {
	return c.pkg
}

// GoodsImagePath returns the stored goods-image path, or nil.
func (c CreateOrderCommand) GoodsImagePath() *string {
	return c.goodsImagePath
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return err
	}
	c.customerID = customerID
	return nil
}

func (c *CreateOrderCommand) setPickup(pickup kernel.GeoPoint) error {
	if err := pickup.Validate(); err != nil {
		return err
	}
	c.pickup = pickup
	return nil
}

func (c *CreateOrderCommand) setDelivery(delivery kernel.GeoPoint) error {
	if err := delivery.Validate(); err != nil {
		return err
	}
	c.delivery = delivery
	return nil
}

func (c *CreateOrderCommand) setPackage(pkg order.Package) error {
	if err := pkg.Validate(); err != nil {
		return err
	}
	c.pkg = pkg
	return nil
}
