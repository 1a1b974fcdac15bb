package driver

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Domain errors for driver operations.
var (
	// ErrNameIsRequired is returned when building a driver without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrDriverIsNotConstructed is returned when using an improperly
	// initialized Driver.
	ErrDriverIsNotConstructed = errors.New("Driver must be created via NewDriver constructor")
)

// Driver is a matching candidate: a verified user with the driver capability
// and a last-known position. Drivers reach the matching engine only through
// DriverRepository.GetAvailable, which filters on verification, location
// freshness, and the one-active-order rule in a single query snapshot.
//
// Example usage:
//
//	candidates, err := repo.GetAvailable(ctx, since)
//	if err != nil {
//	    return err
//	}
//	nearest, err := dispatcher.FindNearest(pickup, candidates)
type Driver struct {
	// id uniquely identifies the driver's user account
	id kernel.UUID
	// name is the human-readable name of the driver
	name string
	// verified reports whether the account passed platform verification
	verified bool
	// location is the last reported position
	location Location
	// guard ensures the driver was properly constructed
	guard guard.ConstructorGuard
}

// NewDriver creates a Driver candidate from a validated identity, name,
// verification flag, and last reported location.
func NewDriver(id kernel.UUID, name string, verified bool, location Location) (*Driver, error) {
	d := &Driver{
		verified: verified,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setName(name),
		d.setLocation(location),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// Validate ensures the driver was created through the constructor.
func (d *Driver) Validate() error {
	if d == nil {
		return ErrDriverIsNotConstructed
	}
	return d.guard.Validate(ErrDriverIsNotConstructed)
}

// IsEqual compares two drivers by their unique identifiers.
func (d *Driver) IsEqual(other *Driver) bool {
	return other != nil && d.id.IsEqual(other.id)
}

// ID returns the driver's user identifier.
func (d *Driver) ID() kernel.UUID {
	return d.id
}

// Name returns the driver's display name.
func (d *Driver) Name() string {
	return d.name
}

// IsVerified reports whether the driver account passed verification.
func (d *Driver) IsVerified() bool {
	return d.verified
}

// Location returns the driver's last reported position.
func (d *Driver) Location() Location {
	return d.location
}

// DistanceKmTo returns the great-circle distance in kilometers from the
// driver's last reported position to the target point.
func (d *Driver) DistanceKmTo(target kernel.GeoPoint) (float64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	return d.location.Point().DistanceKm(target)
}

func (d *Driver) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Driver) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}
	d.name = name
	return nil
}

func (d *Driver) setLocation(location Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	d.location = location
	return nil
}
