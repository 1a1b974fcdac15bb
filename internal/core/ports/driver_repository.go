package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
)

// DriverRepository defines the persistence contract for driver candidates
// and their reported locations.
type DriverRepository interface {
	// Get retrieves a single driver candidate by user identifier.
	// Returns errs.ObjectNotFoundError when the user does not exist,
	// is not a driver, or has never reported a location.
	Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error)

	// GetAvailable retrieves every driver eligible for a new assignment
	// in one query snapshot. A driver qualifies when all of the
	// following hold:
	//   - the account is verified and has the driver capability
	//   - the last location was reported at or after reportedSince
	//   - the driver has no order in a non-terminal assigned state
	//
	// Keeping all three filters in a single query means a driver can
	// never be offered twice because two code paths disagreed about
	// availability.
	GetAvailable(ctx context.Context, reportedSince time.Time) ([]*driver.Driver, error)

	// HasActiveOrder reports whether the driver currently carries an
	// order in a non-terminal assigned state. Explicit assignment uses
	// it to enforce the one-active-order rule outside the GetAvailable
	// snapshot.
	HasActiveOrder(ctx context.Context, driverID kernel.UUID) (bool, error)

	// UpsertLocation stores the driver's latest reported position,
	// replacing any previous report for that driver.
	UpsertLocation(ctx context.Context, driverID kernel.UUID, location driver.Location) error
}
