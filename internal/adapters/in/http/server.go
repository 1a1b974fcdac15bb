// Package http exposes the delivery platform over a REST API. Identity is
// resolved by an upstream gateway and arrives as trusted headers; this
// layer only parses transport concerns and maps domain errors to status
// codes.
package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Identity headers set by the upstream authentication gateway.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
)

// Error is the JSON error envelope of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// AutoAssigner runs one locator-driven matching attempt for an order.
// Satisfied by commands.AutoAssignOrderCommandHandler.
type AutoAssigner interface {
	Handle(ctx context.Context, cmd commands.AutoAssignOrderCommand) (kernel.UUID, error)
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler       commands.CreateOrderCommandHandler
	initializePaymentHandler commands.InitializePaymentCommandHandler
	confirmPaymentHandler    commands.ConfirmPaymentCommandHandler
	assignDriverHandler      commands.AssignDriverCommandHandler
	autoAssignHandler        AutoAssigner
	transitionHandler        commands.TransitionOrderStatusCommandHandler
	reportLocationHandler    commands.ReportDriverLocationCommandHandler

	// Query handlers
	getOrderHandler        queries.GetOrderQueryHandler
	getActiveOrdersHandler queries.GetActiveOrdersQueryHandler

	imageStore ports.GoodsImageStore
}

// NewServer creates a new HTTP server with the required command and query
// handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	initializePaymentHandler commands.InitializePaymentCommandHandler,
	confirmPaymentHandler commands.ConfirmPaymentCommandHandler,
	assignDriverHandler commands.AssignDriverCommandHandler,
	autoAssignHandler AutoAssigner,
	transitionHandler commands.TransitionOrderStatusCommandHandler,
	reportLocationHandler commands.ReportDriverLocationCommandHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	getActiveOrdersHandler queries.GetActiveOrdersQueryHandler,
	imageStore ports.GoodsImageStore,
) *Server {
	return &Server{
		createOrderHandler:       createOrderHandler,
		initializePaymentHandler: initializePaymentHandler,
		confirmPaymentHandler:    confirmPaymentHandler,
		assignDriverHandler:      assignDriverHandler,
		autoAssignHandler:        autoAssignHandler,
		transitionHandler:        transitionHandler,
		reportLocationHandler:    reportLocationHandler,
		getOrderHandler:          getOrderHandler,
		getActiveOrdersHandler:   getActiveOrdersHandler,
		imageStore:               imageStore,
	}
}

// RegisterRoutes attaches all API routes to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.GetActiveOrders)
	api.GET("/orders/:orderID", s.GetOrder)
	api.POST("/orders/:orderID/payment", s.InitializePayment)
	api.POST("/orders/:orderID/assign", s.AssignDriver)
	api.POST("/orders/:orderID/status", s.TransitionOrderStatus)
	api.POST("/payments/confirm", s.ConfirmPayment)
	api.POST("/drivers/location", s.ReportDriverLocation)
}

// CreateOrder handles POST /api/v1/orders. The body is multipart form
// data so the customer can attach a goods image.
func (s *Server) CreateOrder(ctx echo.Context) error {
	actor, err := s.actorFromRequest(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	pickup, err := parseGeoPoint(ctx, "pickup_lon", "pickup_lat")
	if err != nil {
		return respondError(ctx, err)
	}
	delivery, err := parseGeoPoint(ctx, "delivery_lon", "delivery_lat")
	if err != nil {
		return respondError(ctx, err)
	}

	weightKg, err := parseFloat(ctx, "weight_kg")
	if err != nil {
		return respondError(ctx, err)
	}

	pkg, err := order.NewPackage(weightKg, ctx.FormValue("dimensions"), ctx.FormValue("description"))
	if err != nil {
		return respondError(ctx, err)
	}

	orderID := kernel.NewUUID()

	goodsImagePath, err := s.storeGoodsImage(ctx, orderID)
	if err != nil {
		return respondError(ctx, err)
	}

	cmd, err := commands.NewCreateOrderCommand(
		orderID, actor.ID(), pickup, delivery, pkg, goodsImagePath)
	if err != nil {
		return respondError(ctx, err)
	}

	if err = s.createOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, map[string]string{"id": orderID.String()})
}

// InitializePayment handles POST /api/v1/orders/:orderID/payment and
// returns the hosted checkout details.
func (s *Server) InitializePayment(ctx echo.Context) error {
	actor, err := s.actorFromRequest(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	orderID, err := parseOrderID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	var body struct {
		Email string `json:"email"`
	}
	if err = ctx.Bind(&body); err != nil {
		return respondBadRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewInitializePaymentCommand(orderID, actor, body.Email)
	if err != nil {
		return respondError(ctx, err)
	}

	intent, err := s.initializePaymentHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]string{
		"reference":         intent.Reference,
		"authorization_url": intent.AuthorizationURL,
		"access_code":       intent.AccessCode,
	})
}

// ConfirmPayment handles POST /api/v1/payments/confirm. It serves as the
// gateway webhook target and is idempotent, so retried webhooks are safe.
func (s *Server) ConfirmPayment(ctx echo.Context) error {
	var body struct {
		Reference string `json:"reference"`
	}
	if err := ctx.Bind(&body); err != nil {
		return respondBadRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewConfirmPaymentCommand(body.Reference)
	if err != nil {
		return respondError(ctx, err)
	}

	if err = s.confirmPaymentHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// AssignDriver handles POST /api/v1/orders/:orderID/assign. Without a
// driver_id in the body the nearest available driver is located
// automatically; naming one forces that driver onto the order.
func (s *Server) AssignDriver(ctx echo.Context) error {
	actor, err := s.actorFromRequest(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	orderID, err := parseOrderID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	var body struct {
		DriverID string `json:"driver_id"`
	}
	if err = ctx.Bind(&body); err != nil {
		return respondBadRequest(ctx, "Invalid request body")
	}

	if body.DriverID == "" {
		return s.assignNearestDriver(ctx, orderID, actor)
	}

	driverID, err := kernel.UUIDFromString(body.DriverID)
	if err != nil {
		return respondBadRequest(ctx, "Invalid driver id")
	}

	cmd, err := commands.NewAssignDriverCommand(orderID, driverID, actor)
	if err != nil {
		return respondError(ctx, err)
	}

	if err = s.assignDriverHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// assignNearestDriver runs the matching path for a dispatcher who did not
// name a driver. An empty candidate pool surfaces as 404.
func (s *Server) assignNearestDriver(
	ctx echo.Context, orderID kernel.UUID, actor account.Actor,
) error {
	if !actor.Role().CanDispatch() {
		return respondError(ctx, commands.ErrDispatchCapabilityRequired)
	}

	cmd, err := commands.NewAutoAssignOrderCommand(orderID)
	if err != nil {
		return respondError(ctx, err)
	}

	driverID, err := s.autoAssignHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]string{"driver_id": driverID.String()})
}

// TransitionOrderStatus handles POST /api/v1/orders/:orderID/status.
func (s *Server) TransitionOrderStatus(ctx echo.Context) error {
	actor, err := s.actorFromRequest(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	orderID, err := parseOrderID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err = ctx.Bind(&body); err != nil {
		return respondBadRequest(ctx, "Invalid request body")
	}

	next, err := order.StatusFromString(body.Status)
	if err != nil {
		return respondBadRequest(ctx, "Invalid status")
	}

	cmd, err := commands.NewTransitionOrderStatusCommand(orderID, next, actor)
	if err != nil {
		return respondError(ctx, err)
	}

	if err = s.transitionHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ReportDriverLocation handles POST /api/v1/drivers/location.
func (s *Server) ReportDriverLocation(ctx echo.Context) error {
	actor, err := s.actorFromRequest(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	var body struct {
		Longitude float64 `json:"longitude"`
		Latitude  float64 `json:"latitude"`
	}
	if err = ctx.Bind(&body); err != nil {
		return respondBadRequest(ctx, "Invalid request body")
	}

	point, err := kernel.NewGeoPoint(body.Longitude, body.Latitude)
	if err != nil {
		return respondError(ctx, err)
	}

	cmd, err := commands.NewReportDriverLocationCommand(actor, point)
	if err != nil {
		return respondError(ctx, err)
	}

	if err = s.reportLocationHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetOrder handles GET /api/v1/orders/:orderID - order details with full
// status history.
func (s *Server) GetOrder(ctx echo.Context) error {
	actor, err := s.actorFromRequest(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	orderID, err := parseOrderID(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	query, err := queries.NewGetOrderQuery(orderID, actor)
	if err != nil {
		return respondError(ctx, err)
	}

	resp, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toOrderResponse(resp))
}

// GetActiveOrders handles GET /api/v1/orders - the dispatcher workload
// view.
func (s *Server) GetActiveOrders(ctx echo.Context) error {
	actor, err := s.actorFromRequest(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	query, err := queries.NewGetActiveOrdersQuery(actor)
	if err != nil {
		return respondError(ctx, err)
	}

	orders, err := s.getActiveOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	response := make([]activeOrderResponse, len(orders))
	for i, row := range orders {
		response[i] = toActiveOrderResponse(row)
	}

	return ctx.JSON(http.StatusOK, response)
}

func (s *Server) actorFromRequest(ctx echo.Context) (account.Actor, error) {
	id, err := kernel.UUIDFromString(ctx.Request().Header.Get(HeaderUserID))
	if err != nil {
		return account.Actor{}, echo.NewHTTPError(
			http.StatusUnauthorized, "missing or invalid "+HeaderUserID+" header")
	}

	role, err := account.RoleFromString(ctx.Request().Header.Get(HeaderUserRole))
	if err != nil {
		return account.Actor{}, echo.NewHTTPError(
			http.StatusUnauthorized, "missing or invalid "+HeaderUserRole+" header")
	}

	return account.NewActor(id, role)
}

// storeGoodsImage saves the optional goods image attached to an order
// creation request. Returns nil when the form carries no image.
func (s *Server) storeGoodsImage(ctx echo.Context, orderID kernel.UUID) (*string, error) {
	fileHeader, err := ctx.FormFile("goods_image")
	if err != nil {
		// a missing file or a non-multipart body both mean no image
		return nil, nil //nolint:nilerr
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	path, err := s.imageStore.Store(
		ctx.Request().Context(), orderID, fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		return nil, err
	}
	return &path, nil
}

func parseOrderID(ctx echo.Context) (kernel.UUID, error) {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderID"))
	if err != nil {
		return kernel.UUID{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid order id")
	}
	return orderID, nil
}

func parseFloat(ctx echo.Context, field string) (float64, error) {
	value, err := strconv.ParseFloat(ctx.FormValue(field), 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+field)
	}
	return value, nil
}

func parseGeoPoint(ctx echo.Context, lonField, latField string) (kernel.GeoPoint, error) {
	lon, err := parseFloat(ctx, lonField)
	if err != nil {
		return kernel.GeoPoint{}, err
	}
	lat, err := parseFloat(ctx, latField)
	if err != nil {
		return kernel.GeoPoint{}, err
	}
	return kernel.NewGeoPoint(lon, lat)
}

// respondError translates domain and application errors into HTTP status
// codes with a JSON error envelope.
func respondError(ctx echo.Context, err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message, _ := httpErr.Message.(string)
		return ctx.JSON(httpErr.Code, Error{Code: httpErr.Code, Message: message})
	}

	code := statusCodeFor(err)
	return ctx.JSON(code, Error{Code: code, Message: err.Error()})
}

func respondBadRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

func statusCodeFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound),
		errors.Is(err, services.ErrNoDriverAvailable):
		return http.StatusNotFound

	case errors.Is(err, commands.ErrOrderAccessDenied),
		errors.Is(err, queries.ErrOrderAccessDenied),
		errors.Is(err, commands.ErrDispatchCapabilityRequired),
		errors.Is(err, commands.ErrDriverCapabilityRequired),
		errors.Is(err, order.ErrTransitionForbidden):
		return http.StatusForbidden

	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrInvalidState),
		errors.Is(err, commands.ErrDriverNotEligible),
		errors.Is(err, commands.ErrOrderNotAwaitingAssignment):
		return http.StatusConflict

	case errors.Is(err, ports.ErrPaymentDeclined):
		return http.StatusPaymentRequired

	case errors.Is(err, ports.ErrPaymentGatewayTimeout):
		return http.StatusGatewayTimeout

	case errors.Is(err, ports.ErrPaymentGatewayUnavailable):
		return http.StatusBadGateway

	case errors.Is(err, ports.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, ports.ErrImageTypeNotAllowed),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, kernel.ErrInvalidGeometry):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

type historyEntryResponse struct {
	Status  string    `json:"status"`
	ActorID *string   `json:"actor_id,omitempty"`
	At      time.Time `json:"at"`
}

type geoPointResponse struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

type orderResponse struct {
	ID               string                 `json:"id"`
	CustomerID       string                 `json:"customer_id"`
	DriverID         *string                `json:"driver_id,omitempty"`
	Status           string                 `json:"status"`
	Verified         bool                   `json:"verified"`
	Price            float64                `json:"price"`
	PaymentReference *string                `json:"payment_reference,omitempty"`
	Pickup           geoPointResponse       `json:"pickup"`
	Delivery         geoPointResponse       `json:"delivery"`
	WeightKg         float64                `json:"weight_kg"`
	Dimensions       string                 `json:"dimensions"`
	Description      string                 `json:"description"`
	GoodsImagePath   *string                `json:"goods_image_path,omitempty"`
	History          []historyEntryResponse `json:"history"`
}

type activeOrderResponse struct {
	ID       string           `json:"id"`
	Status   string           `json:"status"`
	Verified bool             `json:"verified"`
	DriverID *string          `json:"driver_id,omitempty"`
	Pickup   geoPointResponse `json:"pickup"`
	Delivery geoPointResponse `json:"delivery"`
	Price    float64          `json:"price"`
}

func toOrderResponse(resp queries.GetOrderQueryResponse) orderResponse {
	history := make([]historyEntryResponse, len(resp.History))
	for i, entry := range resp.History {
		history[i] = historyEntryResponse{
			Status:  entry.Status.String(),
			ActorID: uuidString(entry.ActorID),
			At:      entry.At,
		}
	}

	return orderResponse{
		ID:               resp.ID.String(),
		CustomerID:       resp.CustomerID.String(),
		DriverID:         uuidString(resp.DriverID),
		Status:           resp.Status.String(),
		Verified:         resp.Verified,
		Price:            resp.Price,
		PaymentReference: resp.PaymentReference,
		Pickup:           toGeoPointResponse(resp.Pickup),
		Delivery:         toGeoPointResponse(resp.Delivery),
		WeightKg:         resp.WeightKg,
		Dimensions:       resp.Dimensions,
		Description:      resp.Description,
		GoodsImagePath:   resp.GoodsImagePath,
		History:          history,
	}
}

func toActiveOrderResponse(row queries.GetActiveOrdersQueryResponse) activeOrderResponse {
	return activeOrderResponse{
		ID:       row.ID.String(),
		Status:   row.Status.String(),
		Verified: row.Verified,
		DriverID: uuidString(row.DriverID),
		Pickup:   toGeoPointResponse(row.Pickup),
		Delivery: toGeoPointResponse(row.Delivery),
		Price:    row.Price,
	}
}

func toGeoPointResponse(point kernel.GeoPoint) geoPointResponse {
	return geoPointResponse{
		Longitude: point.Longitude(),
		Latitude:  point.Latitude(),
	}
}

func uuidString(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
