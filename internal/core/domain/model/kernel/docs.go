// Package kernel contains shared value objects for the dispatch domain model.
//
// The package provides:
//   - UUID: identity value object wrapping github.com/google/uuid
//   - GeoPoint: immutable WGS84 coordinate pair with great-circle distance
//
// All value objects follow the constructor guard pattern: the zero value is
// invalid and fails Validate, so instances must be created through the
// provided constructors.
package kernel
