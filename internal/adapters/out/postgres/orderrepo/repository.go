package orderrepo

import (
	"context"
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add saves a new order and its initial audit entry to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	if err := r.insertChanges(ctx, aggregate); err != nil {
		return err
	}

	aggregate.CommitChanges()
	return nil
}

// Update saves an existing order together with any uncommitted audit
// entries. The write is conditioned on the status the aggregate was loaded
// with; losing that race surfaces as order.ErrInvalidState and the caller
// must reload and retry.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND status = ?", dto.ID, aggregate.LoadedStatus().String()).
		Select("DriverID", "PaymentRef", "Status", "Verified").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: order %s was modified concurrently",
			order.ErrInvalidState, aggregate.ID())
	}

	if err := r.insertChanges(ctx, aggregate); err != nil {
		return err
	}

	aggregate.CommitChanges()
	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetByPaymentReference retrieves the order linked to a gateway payment
// reference.
func (r *GormOrderRepository) GetByPaymentReference(ctx context.Context, reference string) (*order.Order, error) {
	if reference == "" {
		return nil, errs.NewValueIsRequiredError("reference")
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "payment_ref = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("paymentRef", reference)
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAwaitingAssignment retrieves payment-verified orders still in the
// created status with no driver, oldest first so the longest-waiting
// orders are retried first.
func (r *GormOrderRepository) GetAwaitingAssignment(ctx context.Context) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("status = ? AND verified AND driver_id IS NULL", order.Created.String()).
		Order("created_at").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, nil
}

func (r *GormOrderRepository) insertChanges(ctx context.Context, aggregate *order.Order) error {
	changes := aggregate.UncommittedChanges()
	if len(changes) == 0 {
		return nil
	}

	dtos := make([]StatusChangeDTO, 0, len(changes))
	for _, change := range changes {
		dtos = append(dtos, changeFromDomain(change))
	}

	return r.db.WithContext(ctx).Create(&dtos).Error
}
