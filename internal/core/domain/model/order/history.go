package order

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// StatusChange is one entry of the append-only order audit log. A change is
// recorded for every status mutation, carrying the actor that caused it
// (nil for system-initiated changes such as retry exhaustion) and the time
// it happened.
//
// StatusChange entries are created by the Order aggregate and persisted by
// the repository in the same transaction as the order row itself; they are
// never mutated or deleted afterwards.
type StatusChange struct {
	id      kernel.UUID
	orderID kernel.UUID
	status  Status
	actorID *kernel.UUID
	at      time.Time
}

// RestoreStatusChange reconstructs an audit entry from persistence.
func RestoreStatusChange(
	id kernel.UUID,
	orderID kernel.UUID,
	status Status,
	actorID *kernel.UUID,
	at time.Time,
) StatusChange {
	return StatusChange{
		id:      id,
		orderID: orderID,
		status:  status,
		actorID: actorID,
		at:      at,
	}
}

// newStatusChange records a fresh transition for the given order.
func newStatusChange(orderID kernel.UUID, status Status, actorID *kernel.UUID) StatusChange {
	return StatusChange{
		id:      kernel.NewUUID(),
		orderID: orderID,
		status:  status,
		actorID: actorID,
		at:      time.Now().UTC(),
	}
}

// ID returns the unique identifier of the audit entry.
func (c StatusChange) ID() kernel.UUID {
	return c.id
}

// OrderID returns the order the entry belongs to.
func (c StatusChange) OrderID() kernel.UUID {
	return c.orderID
}

// Status returns the status value the order moved to.
func (c StatusChange) Status() Status {
	return c.status
}

// ActorID returns the actor that caused the change, or nil for
// system-initiated changes.
func (c StatusChange) ActorID() *kernel.UUID {
	return c.actorID
}

// At returns the time the change was recorded.
func (c StatusChange) At() time.Time {
	return c.at
}
