// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Coordinates are stored as raw longitude/latitude pairs; status as its
// lowercase wire name so rows stay readable in psql.
type OrderDTO struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID     uuid.UUID  `gorm:"type:uuid;index;not null"`
	DriverID       *uuid.UUID `gorm:"type:uuid;index"`
	PaymentRef     *string    `gorm:"uniqueIndex"`
	PickupLon      float64    `gorm:"not null"`
	PickupLat      float64    `gorm:"not null"`
	DeliveryLon    float64    `gorm:"not null"`
	DeliveryLat    float64    `gorm:"not null"`
	WeightKg       float64    `gorm:"not null"`
	Dimensions     string
	Description    string
	Price          float64 `gorm:"not null"`
	Status         string  `gorm:"type:varchar(16);index;not null"`
	Verified       bool    `gorm:"not null;default:false"`
	GoodsImagePath *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// StatusChangeDTO represents one audit entry of an order's status history.
// ActorID is null for system-initiated changes.
type StatusChangeDTO struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	Status     string     `gorm:"type:varchar(16);not null"`
	ActorID    *uuid.UUID `gorm:"type:uuid"`
	OccurredAt time.Time  `gorm:"index;not null"`
}

// TableName specifies the database table name for status history entries.
func (StatusChangeDTO) TableName() string {
	return "order_status_changes"
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	var driverID *uuid.UUID
	if id := aggregate.Driver(); id != nil {
		raw := id.Bytes()
		driverID = &raw
	}

	return OrderDTO{
		ID:             aggregate.ID().Bytes(),
		CustomerID:     aggregate.CustomerID().Bytes(),
		DriverID:       driverID,
		PaymentRef:     aggregate.PaymentReference(),
		PickupLon:      aggregate.Pickup().Longitude(),
		PickupLat:      aggregate.Pickup().Latitude(),
		DeliveryLon:    aggregate.Delivery().Longitude(),
		DeliveryLat:    aggregate.Delivery().Latitude(),
		WeightKg:       aggregate.Package().WeightKg(),
		Dimensions:     aggregate.Package().Dimensions(),
		Description:    aggregate.Package().Description(),
		Price:          aggregate.Price(),
		Status:         aggregate.Status().String(),
		Verified:       aggregate.IsVerified(),
		GoodsImagePath: aggregate.GoodsImagePath(),
	}
}

// changeFromDomain converts one uncommitted audit entry to its database
// representation.
func changeFromDomain(change order.StatusChange) StatusChangeDTO {
	var actorID *uuid.UUID
	if id := change.ActorID(); id != nil {
		raw := id.Bytes()
		actorID = &raw
	}

	return StatusChangeDTO{
		ID:         change.ID().Bytes(),
		OrderID:    change.OrderID().Bytes(),
		Status:     change.Status().String(),
		ActorID:    actorID,
		OccurredAt: change.At(),
	}
}

// toDomain converts a database DTO to an order domain aggregate using
// RestoreOrder, so the loaded status becomes the compare-and-set baseline.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}

	var driverID *kernel.UUID
	if dto.DriverID != nil {
		dID, driverErr := kernel.UUIDFromBytes((*dto.DriverID)[:])
		if driverErr != nil {
			return nil, driverErr
		}
		driverID = &dID
	}

	pickup, err := kernel.NewGeoPoint(dto.PickupLon, dto.PickupLat)
	if err != nil {
		return nil, err
	}

	delivery, err := kernel.NewGeoPoint(dto.DeliveryLon, dto.DeliveryLat)
	if err != nil {
		return nil, err
	}

	pkg, err := order.NewPackage(dto.WeightKg, dto.Dimensions, dto.Description)
	if err != nil {
		return nil, err
	}

	status, err := order.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(
		id,
		customerID,
		driverID,
		dto.PaymentRef,
		pickup,
		delivery,
		pkg,
		dto.Price,
		status,
		dto.Verified,
		dto.GoodsImagePath,
	)
}
