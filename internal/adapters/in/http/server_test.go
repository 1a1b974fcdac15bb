package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"object not found", errs.NewObjectNotFoundError("orderId", "x"), http.StatusNotFound},
		{"no driver available", services.ErrNoDriverAvailable, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", errs.NewObjectNotFoundError("orderId", "x")), http.StatusNotFound},
		{"command access denied", commands.ErrOrderAccessDenied, http.StatusForbidden},
		{"query access denied", queries.ErrOrderAccessDenied, http.StatusForbidden},
		{"dispatch capability", commands.ErrDispatchCapabilityRequired, http.StatusForbidden},
		{"driver capability", commands.ErrDriverCapabilityRequired, http.StatusForbidden},
		{"transition forbidden", order.ErrTransitionForbidden, http.StatusForbidden},
		{"invalid transition", order.ErrInvalidTransition, http.StatusConflict},
		{"invalid state", order.ErrInvalidState, http.StatusConflict},
		{"driver not eligible", commands.ErrDriverNotEligible, http.StatusConflict},
		{"not awaiting assignment", commands.ErrOrderNotAwaitingAssignment, http.StatusConflict},
		{"payment declined", ports.ErrPaymentDeclined, http.StatusPaymentRequired},
		{"gateway timeout", ports.ErrPaymentGatewayTimeout, http.StatusGatewayTimeout},
		{"gateway unavailable", ports.ErrPaymentGatewayUnavailable, http.StatusBadGateway},
		{"image too large", ports.ErrImageTooLarge, http.StatusRequestEntityTooLarge},
		{"image type not allowed", ports.ErrImageTypeNotAllowed, http.StatusBadRequest},
		{"invalid value", errs.NewValueIsInvalidError("weight"), http.StatusBadRequest},
		{"required value", errs.NewValueIsRequiredError("email"), http.StatusBadRequest},
		{"invalid geometry", kernel.ErrInvalidGeometry, http.StatusBadRequest},
		{"unknown error", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusCodeFor(tt.err))
		})
	}
}

func newEchoContext(t *testing.T, headers map[string]string) echo.Context {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec)
}

func TestActorFromRequest(t *testing.T) {
	server := &Server{}

	t.Run("valid headers", func(t *testing.T) {
		userID := kernel.NewUUID()
		ctx := newEchoContext(t, map[string]string{
			HeaderUserID:   userID.String(),
			HeaderUserRole: "driver",
		})

		actor, err := server.actorFromRequest(ctx)
		require.NoError(t, err)
		assert.True(t, actor.ID().IsEqual(userID))
		assert.Equal(t, account.RoleDriver, actor.Role())
	})

	t.Run("missing user id", func(t *testing.T) {
		ctx := newEchoContext(t, map[string]string{HeaderUserRole: "customer"})

		_, err := server.actorFromRequest(ctx)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("malformed user id", func(t *testing.T) {
		ctx := newEchoContext(t, map[string]string{
			HeaderUserID:   "not-a-uuid",
			HeaderUserRole: "customer",
		})

		_, err := server.actorFromRequest(ctx)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("unknown role", func(t *testing.T) {
		ctx := newEchoContext(t, map[string]string{
			HeaderUserID:   kernel.NewUUID().String(),
			HeaderUserRole: "superuser",
		})

		_, err := server.actorFromRequest(ctx)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})
}

func TestParseOrderID(t *testing.T) {
	e := echo.New()

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := e.NewContext(req, httptest.NewRecorder())
		orderID := kernel.NewUUID()
		ctx.SetParamNames("orderID")
		ctx.SetParamValues(orderID.String())

		parsed, err := parseOrderID(ctx)
		require.NoError(t, err)
		assert.True(t, parsed.IsEqual(orderID))
	})

	t.Run("malformed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := e.NewContext(req, httptest.NewRecorder())
		ctx.SetParamNames("orderID")
		ctx.SetParamValues("42")

		_, err := parseOrderID(ctx)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})
}

func TestToOrderResponse(t *testing.T) {
	orderID := kernel.NewUUID()
	customerID := kernel.NewUUID()
	driverID := kernel.NewUUID()
	reference := "order_" + orderID.String()

	pickup, err := kernel.NewGeoPoint(3.3792, 6.5244)
	require.NoError(t, err)
	delivery, err := kernel.NewGeoPoint(3.4216, 6.4478)
	require.NoError(t, err)

	resp := toOrderResponse(queries.GetOrderQueryResponse{
		ID:               orderID,
		CustomerID:       customerID,
		DriverID:         &driverID,
		Status:           order.Assigned,
		Verified:         true,
		Price:            1500.00,
		PaymentReference: &reference,
		Pickup:           pickup,
		Delivery:         delivery,
		WeightKg:         2.5,
		Dimensions:       "30x20x10",
		Description:      "books",
		History: []queries.StatusChangeResponse{
			{Status: order.Created},
			{Status: order.Assigned, ActorID: &driverID},
		},
	})

	assert.Equal(t, orderID.String(), resp.ID)
	assert.Equal(t, "assigned", resp.Status)
	require.NotNil(t, resp.DriverID)
	assert.Equal(t, driverID.String(), *resp.DriverID)
	assert.InDelta(t, 3.3792, resp.Pickup.Longitude, 0.0001)
	assert.InDelta(t, 6.5244, resp.Pickup.Latitude, 0.0001)

	require.Len(t, resp.History, 2)
	assert.Equal(t, "created", resp.History[0].Status)
	assert.Nil(t, resp.History[0].ActorID)
	assert.Equal(t, "assigned", resp.History[1].Status)
	require.NotNil(t, resp.History[1].ActorID)
}

type stubAutoAssigner struct {
	driverID kernel.UUID
	err      error
	calls    int
	lastCmd  commands.AutoAssignOrderCommand
}

func (s *stubAutoAssigner) Handle(
	_ context.Context, cmd commands.AutoAssignOrderCommand,
) (kernel.UUID, error) {
	s.calls++
	s.lastCmd = cmd
	if s.err != nil {
		return kernel.UUID{}, s.err
	}
	return s.driverID, nil
}

func newAssignRequest(t *testing.T, orderID kernel.UUID, role, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(
		http.MethodPost, "/api/v1/orders/"+orderID.String()+"/assign", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(HeaderUserID, kernel.NewUUID().String())
	req.Header.Set(HeaderUserRole, role)
	rec := httptest.NewRecorder()
	ctx := echo.New().NewContext(req, rec)
	ctx.SetParamNames("orderID")
	ctx.SetParamValues(orderID.String())
	return ctx, rec
}

func TestAssignDriver_LocatesNearestWhenNoDriverNamed(t *testing.T) {
	orderID := kernel.NewUUID()
	matched := kernel.NewUUID()
	assigner := &stubAutoAssigner{driverID: matched}
	server := &Server{autoAssignHandler: assigner}

	ctx, rec := newAssignRequest(t, orderID, "dispatcher", `{}`)
	require.NoError(t, server.AssignDriver(ctx))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, assigner.calls)
	assert.True(t, assigner.lastCmd.OrderID().IsEqual(orderID))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, matched.String(), body["driver_id"])
}

func TestAssignDriver_EmptyCandidatePoolIsNotFound(t *testing.T) {
	assigner := &stubAutoAssigner{err: services.ErrNoDriverAvailable}
	server := &Server{autoAssignHandler: assigner}

	ctx, rec := newAssignRequest(t, kernel.NewUUID(), "dispatcher", `{}`)
	require.NoError(t, server.AssignDriver(ctx))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1, assigner.calls)
}

func TestAssignDriver_LocatorRequiresDispatchCapability(t *testing.T) {
	assigner := &stubAutoAssigner{driverID: kernel.NewUUID()}
	server := &Server{autoAssignHandler: assigner}

	for _, role := range []string{"customer", "driver"} {
		ctx, rec := newAssignRequest(t, kernel.NewUUID(), role, `{}`)
		require.NoError(t, server.AssignDriver(ctx))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Zero(t, assigner.calls)
	}
}
