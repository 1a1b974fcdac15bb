// Package driverrepo persists driver candidates and their reported
// locations. Driver accounts themselves are provisioned by the identity
// system; this package only reads them and owns the location table.
package driverrepo

import (
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// DriverDTO represents the database structure of a driver account as seen
// by the matching engine.
type DriverDTO struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name     string    `gorm:"not null"`
	Verified bool      `gorm:"not null;default:false"`
}

// TableName specifies the database table name for driver entities.
func (DriverDTO) TableName() string {
	return "drivers"
}

// LocationDTO represents a driver's last reported position. One row per
// driver; each report replaces the previous one.
type LocationDTO struct {
	DriverID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Lon        float64   `gorm:"not null"`
	Lat        float64   `gorm:"not null"`
	ReportedAt time.Time `gorm:"index;not null"`
}

// TableName specifies the database table name for driver locations.
func (LocationDTO) TableName() string {
	return "driver_locations"
}

// candidateRow is the joined shape scanned out of availability queries.
type candidateRow struct {
	ID         uuid.UUID
	Name       string
	Verified   bool
	Lon        float64
	Lat        float64
	ReportedAt time.Time
}

// toDomain converts a joined driver row to a Driver candidate.
func (row candidateRow) toDomain() (*driver.Driver, error) {
	id, err := kernel.UUIDFromBytes(row.ID[:])
	if err != nil {
		return nil, err
	}

	point, err := kernel.NewGeoPoint(row.Lon, row.Lat)
	if err != nil {
		return nil, err
	}

	location, err := driver.NewLocation(point, row.ReportedAt)
	if err != nil {
		return nil, err
	}

	return driver.NewDriver(id, row.Name, row.Verified, location)
}
