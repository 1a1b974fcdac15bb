package services

import (
	"errors"
	"math"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
)

// ErrNoDriverAvailable is returned when no driver can take an order right
// now. This occurs when the candidate list is empty, which means every
// driver is either unverified, reporting a stale location, or already
// carrying an active order.
var ErrNoDriverAvailable = errors.New("no driver available")

// DriverDispatcher is a domain service that selects the best driver for a
// pickup point from a list of pre-filtered candidates.
//
// Selection rules:
//   - Candidates must already satisfy availability (verification, location
//     freshness, no active order); the dispatcher only ranks them
//   - The driver nearest to the pickup point wins
//   - Ties keep the first candidate in the list
//
// Example usage:
//
//	dispatcher := NewDriverDispatcher()
//	nearest, err := dispatcher.FindNearest(pickup, candidates)
//	if errors.Is(err, ErrNoDriverAvailable) {
//	    // schedule a retry
//	    return
//	}
type DriverDispatcher struct{}

// NewDriverDispatcher creates a new DriverDispatcher instance.
func NewDriverDispatcher() DriverDispatcher {
	return DriverDispatcher{}
}

// FindNearest returns the candidate closest to the pickup point by
// great-circle distance, or ErrNoDriverAvailable when the list is empty.
func (d DriverDispatcher) FindNearest(pickup kernel.GeoPoint, candidates []*driver.Driver) (*driver.Driver, error) {
	if err := pickup.Validate(); err != nil {
		return nil, err
	}

	var (
		nearest      *driver.Driver
		bestDistance = math.MaxFloat64
	)

	for _, candidate := range candidates {
		if err := candidate.Validate(); err != nil {
			return nil, err
		}

		distance, err := candidate.DistanceKmTo(pickup)
		if err != nil {
			return nil, err
		}

		if distance < bestDistance {
			bestDistance = distance
			nearest = candidate
		}
	}

	if nearest == nil {
		return nil, ErrNoDriverAvailable
	}

	return nearest, nil
}
