package services

import (
	"math"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

// Tariff holds the pricing coefficients applied to every order.
//
// Price formula:
//
//	price = round((distanceKm*RatePerKm + weightKg*RatePerKg) * DemandMultiplier, 2)
type Tariff struct {
	// RatePerKm is the charge per kilometer of route distance
	RatePerKm float64
	// RatePerKg is the charge per kilogram of package weight
	RatePerKg float64
	// DemandMultiplier scales the subtotal, 1.0 means no surge
	DemandMultiplier float64
}

// Validate ensures every tariff coefficient is positive and finite.
func (t Tariff) Validate() error {
	if err := validateRate("ratePerKm", t.RatePerKm); err != nil {
		return err
	}
	if err := validateRate("ratePerKg", t.RatePerKg); err != nil {
		return err
	}
	return validateRate("demandMultiplier", t.DemandMultiplier)
}

func validateRate(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return errs.NewValueIsInvalidError(name)
	}
	return nil
}

// PricingCalculator is a domain service that computes the delivery price
// for an order. The price is fixed at order creation and never recomputed,
// so later tariff changes do not affect existing orders.
type PricingCalculator struct {
	tariff Tariff
}

// NewPricingCalculator creates a PricingCalculator with the given tariff.
func NewPricingCalculator(tariff Tariff) (PricingCalculator, error) {
	if err := tariff.Validate(); err != nil {
		return PricingCalculator{}, err
	}
	return PricingCalculator{tariff: tariff}, nil
}

// CalculatePrice computes the delivery price for a route between pickup and
// delivery carrying the given package. The result is rounded half away from
// zero to two decimal places.
func (p PricingCalculator) CalculatePrice(pickup, delivery kernel.GeoPoint, pkg order.Package) (float64, error) {
	if err := pkg.Validate(); err != nil {
		return 0, err
	}

	distanceKm, err := pickup.DistanceKm(delivery)
	if err != nil {
		return 0, err
	}

	subtotal := distanceKm*p.tariff.RatePerKm + pkg.WeightKg()*p.tariff.RatePerKg
	return math.Round(subtotal*p.tariff.DemandMultiplier*100) / 100, nil
}
