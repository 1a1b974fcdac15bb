package queries

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetActiveOrdersQueryHandler retrieves orders still moving through the
// lifecycle, giving dispatchers visibility into the current workload.
type GetActiveOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveOrdersQueryHandler creates a handler for the active-orders
// view. Requires a GORM database connection for query execution.
func NewGetActiveOrdersQueryHandler(db *gorm.DB) GetActiveOrdersQueryHandler {
	return GetActiveOrdersQueryHandler{db: db}
}

// Handle executes the query. Returns orders in the created, assigned, or
// picked_up status, ordered by id for stable output.
func (h GetActiveOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetActiveOrdersQuery,
) ([]GetActiveOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	if !query.Actor().Role().CanDispatch() {
		return nil, ErrOrderAccessDenied
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			status,
			verified,
			driver_id,
			pickup_lon,
			pickup_lat,
			delivery_lon,
			delivery_lat,
			price
		FROM orders
		WHERE status IN (?, ?, ?)
		ORDER BY id
	`, order.Created.String(), order.Assigned.String(), order.PickedUp.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]GetActiveOrdersQueryResponse, 0)

	for rows.Next() {
		var (
			resp        GetActiveOrdersQueryResponse
			id          uuid.UUID
			status      string
			driverID    uuid.NullUUID
			pickupLon   float64
			pickupLat   float64
			deliveryLon float64
			deliveryLat float64
		)

		err = rows.Scan(
			&id,
			&status,
			&resp.Verified,
			&driverID,
			&pickupLon,
			&pickupLat,
			&deliveryLon,
			&deliveryLat,
			&resp.Price,
		)
		if err != nil {
			return nil, err
		}

		if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if resp.Status, err = order.StatusFromString(status); err != nil {
			return nil, err
		}
		if driverID.Valid {
			converted, convErr := kernel.UUIDFromBytes(driverID.UUID[:])
			if convErr != nil {
				return nil, convErr
			}
			resp.DriverID = &converted
		}
		if resp.Pickup, err = kernel.NewGeoPoint(pickupLon, pickupLat); err != nil {
			return nil, err
		}
		if resp.Delivery, err = kernel.NewGeoPoint(deliveryLon, deliveryLat); err != nil {
			return nil, err
		}

		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
