package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/guard"
)

const (
	// LongitudeMin is the smallest valid longitude in degrees.
	LongitudeMin = -180.0
	// LongitudeMax is the largest valid longitude in degrees.
	LongitudeMax = 180.0
	// LatitudeMin is the smallest valid latitude in degrees.
	LatitudeMin = -90.0
	// LatitudeMax is the largest valid latitude in degrees.
	LatitudeMax = 90.0

	// earthRadiusKm is the mean Earth radius used by the haversine formula.
	earthRadiusKm = 6371.0088

	degToRad = math.Pi / 180
)

// ErrInvalidGeometry classifies every malformed-coordinate failure. All
// geometry errors produced by this package unwrap to it, so callers can use
// errors.Is(err, ErrInvalidGeometry) regardless of which coordinate was bad.
var ErrInvalidGeometry = errors.New("geometry is invalid")

// ErrGeoPointIsNotConstructed is returned when validating a zero-value
// GeoPoint. Points must be created via NewGeoPoint.
var ErrGeoPointIsNotConstructed = fmt.Errorf(
	"%w: GeoPoint must be created via NewGeoPoint", ErrInvalidGeometry)

// GeoPoint is an immutable WGS84 coordinate pair stored as (longitude,
// latitude), matching the GeoJSON axis order used on the wire. The zero value
// is invalid and fails Validate; use NewGeoPoint to create instances.
//
// Example:
//
//	pickup, err := kernel.NewGeoPoint(3.3792, 6.5244)
//	if err != nil {
//	    // handle ErrInvalidGeometry
//	}
//	fmt.Println(pickup) // GeoPoint(3.379200,6.524400)
type GeoPoint struct { //nolint:recvcheck //using for validation
	longitude float64
	latitude  float64
	guard     guard.ConstructorGuard
}

// NewGeoPoint creates a GeoPoint from a longitude and latitude in degrees.
// Both values must be finite and within their WGS84 bounds; anything else
// fails with an error unwrapping to ErrInvalidGeometry.
func NewGeoPoint(longitude float64, latitude float64) (GeoPoint, error) {
	point := GeoPoint{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(point.setLongitude(longitude), point.setLatitude(latitude)); err != nil {
		return GeoPoint{}, err
	}

	return point, nil
}

// Validate checks that the point was created via NewGeoPoint.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// Longitude returns the longitude in degrees.
func (p GeoPoint) Longitude() float64 {
	return p.longitude
}

// Latitude returns the latitude in degrees.
func (p GeoPoint) Latitude() float64 {
	return p.latitude
}

// String implements fmt.Stringer as "GeoPoint(longitude,latitude)".
func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%f,%f)", p.longitude, p.latitude)
}

// IsEqual compares two points coordinate-wise. Both points must be properly
// constructed for the comparison to succeed.
func (p GeoPoint) IsEqual(other GeoPoint) (bool, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return p.longitude == other.longitude && p.latitude == other.latitude, nil
}

// DistanceKm returns the great-circle distance between two points in
// kilometers, computed with the haversine formula on a spherical Earth of
// mean radius. The distance is symmetric and zero for identical points.
// Both points must be properly constructed.
func (p GeoPoint) DistanceKm(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	dLat := (other.latitude - p.latitude) * degToRad
	dLon := (other.longitude - p.longitude) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(p.latitude*degToRad)*math.Cos(other.latitude*degToRad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c, nil
}

// setLongitude sets the longitude with validation.
func (p *GeoPoint) setLongitude(longitude float64) error {
	if math.IsNaN(longitude) || math.IsInf(longitude, 0) {
		return fmt.Errorf("%w: longitude must be a finite number", ErrInvalidGeometry)
	}
	if longitude < LongitudeMin || longitude > LongitudeMax {
		return fmt.Errorf("%w: longitude %f is outside [%v, %v]",
			ErrInvalidGeometry, longitude, LongitudeMin, LongitudeMax)
	}

	p.longitude = longitude
	return nil
}

// setLatitude sets the latitude with validation.
func (p *GeoPoint) setLatitude(latitude float64) error {
	if math.IsNaN(latitude) || math.IsInf(latitude, 0) {
		return fmt.Errorf("%w: latitude must be a finite number", ErrInvalidGeometry)
	}
	if latitude < LatitudeMin || latitude > LatitudeMax {
		return fmt.Errorf("%w: latitude %f is outside [%v, %v]",
			ErrInvalidGeometry, latitude, LatitudeMin, LatitudeMax)
	}

	p.latitude = latitude
	return nil
}
