package driverrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDriverRepository implements DriverRepository using GORM.
type GormDriverRepository struct {
	db *gorm.DB
}

// NewGormDriverRepository creates a new GORM driver repository.
func NewGormDriverRepository(db *gorm.DB) *GormDriverRepository {
	return &GormDriverRepository{db: db}
}

// Get retrieves a single driver candidate with their last reported
// location. A driver who never reported a position cannot be built into a
// candidate and comes back as not found.
func (r *GormDriverRepository) Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var row candidateRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			d.id,
			d.name,
			d.verified,
			l.lon,
			l.lat,
			l.reported_at
		FROM drivers d
		JOIN driver_locations l ON l.driver_id = d.id
		WHERE d.id = ?
	`, id.String()).Row().Scan(&row.ID, &row.Name, &row.Verified, &row.Lon, &row.Lat, &row.ReportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewObjectNotFoundError("driver", id.String())
	}
	if err != nil {
		return nil, err
	}

	return row.toDomain()
}

// GetAvailable retrieves every driver eligible for assignment in one
// snapshot: verified, fresh location, and no active order. Keeping the
// filters in a single query is what prevents two code paths from ever
// disagreeing about who is available.
func (r *GormDriverRepository) GetAvailable(ctx context.Context, reportedSince time.Time) ([]*driver.Driver, error) {
	rows, err := r.db.WithContext(ctx).Raw(`
		SELECT
			d.id,
			d.name,
			d.verified,
			l.lon,
			l.lat,
			l.reported_at
		FROM drivers d
		JOIN driver_locations l ON l.driver_id = d.id
		WHERE d.verified
		  AND l.reported_at >= ?
		  AND NOT EXISTS (
			SELECT 1
			FROM orders o
			WHERE o.driver_id = d.id
			  AND o.status IN (?, ?)
		  )
		ORDER BY d.id
	`, reportedSince, order.Assigned.String(), order.PickedUp.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := make([]*driver.Driver, 0)

	for rows.Next() {
		var row candidateRow
		if err = rows.Scan(&row.ID, &row.Name, &row.Verified, &row.Lon, &row.Lat, &row.ReportedAt); err != nil {
			return nil, err
		}

		candidate, convErr := row.toDomain()
		if convErr != nil {
			return nil, convErr
		}
		candidates = append(candidates, candidate)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return candidates, nil
}

// HasActiveOrder reports whether the driver carries an order in the
// assigned or picked_up status.
func (r *GormDriverRepository) HasActiveOrder(ctx context.Context, driverID kernel.UUID) (bool, error) {
	if err := driverID.Validate(); err != nil {
		return false, err
	}

	var count int64
	err := r.db.WithContext(ctx).
		Table("orders").
		Where("driver_id = ? AND status IN (?, ?)",
			driverID.Bytes(), order.Assigned.String(), order.PickedUp.String()).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// UpsertLocation stores the driver's latest reported position, replacing
// any previous row for that driver.
func (r *GormDriverRepository) UpsertLocation(ctx context.Context, driverID kernel.UUID, location driver.Location) error {
	if err := driverID.Validate(); err != nil {
		return err
	}
	if err := location.Validate(); err != nil {
		return err
	}

	dto := LocationDTO{
		DriverID:   driverID.Bytes(),
		Lon:        location.Point().Longitude(),
		Lat:        location.Point().Latitude(),
		ReportedAt: location.ReportedAt(),
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "driver_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"lon", "lat", "reported_at"}),
		}).
		Create(&dto).Error
}
