// Package ports defines the contracts between the domain layer and
// infrastructure: repositories, the unit of work, the notification
// publisher, the payment gateway, and the goods-image store. Adapters
// implement these interfaces; handlers depend only on them.
package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate together with its initial
	// history entry in the ambient transaction.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate along with
	// any uncommitted history entries. The write is guarded by the status
	// the aggregate was loaded with: if another transaction moved the
	// order since it was read, no row matches and Update returns
	// order.ErrInvalidState so the caller can retry on fresh state.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	// Returns errs.ObjectNotFoundError when no such order exists.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByPaymentReference retrieves the order linked to a gateway
	// payment reference. Returns errs.ObjectNotFoundError when no order
	// carries the reference.
	GetByPaymentReference(ctx context.Context, reference string) (*order.Order, error)

	// GetAwaitingAssignment retrieves payment-verified orders that are
	// still in the created status with no driver. Used by the recovery
	// sweep to re-enqueue orders whose retry timers were lost to a
	// process restart.
	GetAwaitingAssignment(ctx context.Context) ([]*order.Order, error)
}
