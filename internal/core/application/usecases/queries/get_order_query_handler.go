package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrOrderAccessDenied is returned when the requesting actor is neither a
// participant of the order nor dispatch-capable staff.
var ErrOrderAccessDenied = errors.New("actor has no access to this order")

// GetOrderQueryHandler retrieves a single order with its complete status
// history for tracking and support.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for single-order lookups.
// Requires a GORM database connection for query execution.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the lookup. Returns errs.ObjectNotFoundError when the
// order does not exist and ErrOrderAccessDenied when the actor may not see
// it. History entries come back oldest first.
func (h GetOrderQueryHandler) Handle(
	ctx context.Context,
	query GetOrderQuery,
) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	resp, err := h.fetchOrder(ctx, query.OrderID())
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	actor := query.Actor()
	if !actor.Role().CanDispatch() {
		participant := resp.CustomerID.IsEqual(actor.ID()) ||
			(resp.DriverID != nil && resp.DriverID.IsEqual(actor.ID()))
		if !participant {
			return GetOrderQueryResponse{}, ErrOrderAccessDenied
		}
	}

	resp.History, err = h.fetchHistory(ctx, query.OrderID())
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	return resp, nil
}

func (h *GetOrderQueryHandler) fetchOrder(ctx context.Context, orderID kernel.UUID) (GetOrderQueryResponse, error) {
	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			customer_id,
			driver_id,
			payment_ref,
			pickup_lon,
			pickup_lat,
			delivery_lon,
			delivery_lat,
			weight_kg,
			dimensions,
			description,
			price,
			status,
			verified,
			goods_image_path
		FROM orders
		WHERE id = ?
	`, orderID.String()).Row()

	var (
		resp           GetOrderQueryResponse
		id             uuid.UUID
		customerID     uuid.UUID
		driverID       uuid.NullUUID
		paymentRef     sql.NullString
		pickupLon      float64
		pickupLat      float64
		deliveryLon    float64
		deliveryLat    float64
		status         string
		goodsImagePath sql.NullString
	)

	err := row.Scan(
		&id,
		&customerID,
		&driverID,
		&paymentRef,
		&pickupLon,
		&pickupLat,
		&deliveryLon,
		&deliveryLat,
		&resp.WeightKg,
		&resp.Dimensions,
		&resp.Description,
		&resp.Price,
		&status,
		&resp.Verified,
		&goodsImagePath,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("orderId", orderID.String())
	}
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if resp.CustomerID, err = kernel.UUIDFromBytes(customerID[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if driverID.Valid {
		converted, convErr := kernel.UUIDFromBytes(driverID.UUID[:])
		if convErr != nil {
			return GetOrderQueryResponse{}, convErr
		}
		resp.DriverID = &converted
	}
	if paymentRef.Valid {
		resp.PaymentReference = &paymentRef.String
	}
	if goodsImagePath.Valid {
		resp.GoodsImagePath = &goodsImagePath.String
	}

	if resp.Status, err = order.StatusFromString(status); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if resp.Pickup, err = kernel.NewGeoPoint(pickupLon, pickupLat); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if resp.Delivery, err = kernel.NewGeoPoint(deliveryLon, deliveryLat); err != nil {
		return GetOrderQueryResponse{}, err
	}

	return resp, nil
}

func (h *GetOrderQueryHandler) fetchHistory(ctx context.Context, orderID kernel.UUID) ([]StatusChangeResponse, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			status,
			actor_id,
			occurred_at
		FROM order_status_changes
		WHERE order_id = ?
		ORDER BY occurred_at, id
	`, orderID.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]StatusChangeResponse, 0)

	for rows.Next() {
		var (
			entry      StatusChangeResponse
			status     string
			actorID    uuid.NullUUID
			occurredAt time.Time
		)

		if err = rows.Scan(&status, &actorID, &occurredAt); err != nil {
			return nil, err
		}

		if entry.Status, err = order.StatusFromString(status); err != nil {
			return nil, err
		}
		if actorID.Valid {
			converted, convErr := kernel.UUIDFromBytes(actorID.UUID[:])
			if convErr != nil {
				return nil, convErr
			}
			entry.ActorID = &converted
		}
		entry.At = occurredAt

		history = append(history, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return history, nil
}
