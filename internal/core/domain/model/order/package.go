package order

import (
	"errors"
	"fmt"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// MaxPackageWeightKg is the heaviest parcel a single driver delivery accepts.
const MaxPackageWeightKg = 100.0

// ErrPackageIsNotConstructed is returned when using an improperly initialized Package.
var ErrPackageIsNotConstructed = errors.New("Package must be created via NewPackage constructor")

// Package describes the parcel attached to an order: its weight, free-form
// dimensions, and description. It is an immutable value object; weight drives
// the pricing formula, the rest is informational.
type Package struct { //nolint:recvcheck //using for validation
	weightKg    float64
	dimensions  string
	description string

	guard guard.ConstructorGuard
}

// NewPackage creates a Package with a positive weight in kilograms.
// Dimensions and description are optional free-form text.
func NewPackage(weightKg float64, dimensions string, description string) (Package, error) {
	pkg := Package{
		dimensions:  dimensions,
		description: description,
		guard:       guard.NewConstructorGuard(),
	}

	if err := pkg.setWeightKg(weightKg); err != nil {
		return Package{}, err
	}

	return pkg, nil
}

// Validate ensures the package was created through the constructor.
func (p Package) Validate() error {
	return p.guard.Validate(ErrPackageIsNotConstructed)
}

// WeightKg returns the parcel weight in kilograms.
func (p Package) WeightKg() float64 {
	return p.weightKg
}

// Dimensions returns the free-form dimensions text.
func (p Package) Dimensions() string {
	return p.dimensions
}

// Description returns the free-form contents description.
func (p Package) Description() string {
	return p.description
}

func (p *Package) setWeightKg(weightKg float64) error {
	if weightKg <= 0 || weightKg > MaxPackageWeightKg {
		return errs.NewValueIsOutOfRangeError("package weight", weightKg, 0, MaxPackageWeightKg)
	}
	p.weightKg = weightKg
	return nil
}

// String implements fmt.Stringer for logging.
func (p Package) String() string {
	return fmt.Sprintf("Package(%.2fkg)", p.weightKg)
}
