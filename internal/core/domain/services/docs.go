// Package services contains stateless domain services that implement
// business logic spanning multiple aggregates.
//
// DriverDispatcher ranks available driver candidates by straight-line
// distance to a pickup point and selects the nearest one. PricingCalculator
// computes the delivery price from route distance, package weight, and the
// configured tariff.
//
// Both services are pure: they do not touch repositories or external
// systems, which keeps them trivially testable. Candidate filtering
// (verification, location freshness, the one-active-order rule) happens in
// the persistence layer before candidates reach the dispatcher.
package services
