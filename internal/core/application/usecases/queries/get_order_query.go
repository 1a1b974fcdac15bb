// Package queries contains read-side operations of the CQRS split. Query
// handlers read the database directly with raw SQL and return plain
// response structs; they never load aggregates or mutate state.
package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

// ErrGetOrderQueryIsNotConstructed is returned when using an improperly
// initialized GetOrderQuery.
var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery retrieves one order with its full status history.
// The requesting actor travels with the query because read access is
// restricted to the order's participants and dispatch-capable staff.
type GetOrderQuery struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actor   account.Actor

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for a single order.
func NewGetOrderQuery(orderID kernel.UUID, actor account.Actor) (GetOrderQuery, error) {
	query := GetOrderQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		query.setOrderID(orderID),
		query.setActor(actor),
	); err != nil {
		return GetOrderQuery{}, err
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderID returns the order to fetch.
func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// Actor returns the requesting actor.
func (q GetOrderQuery) Actor() account.Actor {
	return q.actor
}

func (q *GetOrderQuery) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	q.orderID = orderID
	return nil
}

func (q *GetOrderQuery) setActor(actor account.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	q.actor = actor
	return nil
}

// StatusChangeResponse is one audit entry in an order's history. ActorID is
// nil for system-initiated changes such as retry exhaustion.
type StatusChangeResponse struct {
	Status  order.Status
	ActorID *kernel.UUID
	At      time.Time
}

// GetOrderQueryResponse is the full read model of one order.
type GetOrderQueryResponse struct {
	ID               kernel.UUID
	CustomerID       kernel.UUID
	DriverID         *kernel.UUID
	Status           order.Status
	Verified         bool
	Price            float64
	PaymentReference *string
	Pickup           kernel.GeoPoint
	Delivery         kernel.GeoPoint
	WeightKg         float64
	Dimensions       string
	Description      string
	GoodsImagePath   *string
	History          []StatusChangeResponse
}
