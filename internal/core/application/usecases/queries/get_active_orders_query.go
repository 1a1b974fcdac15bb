package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

// ErrGetActiveOrdersQueryIsNotConstructed is returned when using an
// improperly initialized GetActiveOrdersQuery.
var ErrGetActiveOrdersQueryIsNotConstructed = errors.New(
	"GetActiveOrdersQuery must be created via NewGetActiveOrdersQuery constructor",
)

// GetActiveOrdersQuery retrieves every order that has not reached a
// terminal status. Dispatch-capable actors only; it is the operational
// workload view.
type GetActiveOrdersQuery struct { //nolint:recvcheck //using for validation
	actor account.Actor

	guard guard.ConstructorGuard
}

// NewGetActiveOrdersQuery creates the active-orders query for the given
// actor.
func NewGetActiveOrdersQuery(actor account.Actor) (GetActiveOrdersQuery, error) {
	query := GetActiveOrdersQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := query.setActor(actor); err != nil {
		return GetActiveOrdersQuery{}, err
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
func (q GetActiveOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveOrdersQueryIsNotConstructed)
}

// Actor returns the requesting actor.
func (q GetActiveOrdersQuery) Actor() account.Actor {
	return q.actor
}

func (q *GetActiveOrdersQuery) setActor(actor account.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	q.actor = actor
	return nil
}

// GetActiveOrdersQueryResponse is one row of the operational workload view.
type GetActiveOrdersQueryResponse struct {
	ID       kernel.UUID
	Status   order.Status
	Verified bool
	DriverID *kernel.UUID
	Pickup   kernel.GeoPoint
	Delivery kernel.GeoPoint
	Price    float64
}
