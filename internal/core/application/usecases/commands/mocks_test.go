package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByPaymentReference(ctx context.Context, reference string) (*order.Order, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAwaitingAssignment(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockDriverRepository struct{ mock.Mock }

func (m *MockDriverRepository) Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*driver.Driver), args.Error(1)
}

func (m *MockDriverRepository) GetAvailable(ctx context.Context, reportedSince time.Time) ([]*driver.Driver, error) {
	args := m.Called(ctx, reportedSince)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*driver.Driver), args.Error(1)
}

func (m *MockDriverRepository) HasActiveOrder(ctx context.Context, driverID kernel.UUID) (bool, error) {
	args := m.Called(ctx, driverID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDriverRepository) UpsertLocation(ctx context.Context, driverID kernel.UUID, location driver.Location) error {
	args := m.Called(ctx, driverID, location)
	return args.Error(0)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) DriverRepository() ports.DriverRepository {
	args := m.Called()
	return args.Get(0).(ports.DriverRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockDriverUoWFactory struct{ mock.Mock }

func (m *MockDriverUoWFactory) Create() commands.DriverUoW {
	args := m.Called()
	return args.Get(0).(commands.DriverUoW)
}

type MockNotificationPublisher struct{ mock.Mock }

func (m *MockNotificationPublisher) Publish(ctx context.Context, n ports.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type MockPaymentGateway struct{ mock.Mock }

func (m *MockPaymentGateway) Initialize(ctx context.Context, reference string, amountMinor int64, email string) (ports.PaymentIntent, error) {
	args := m.Called(ctx, reference, amountMinor, email)
	return args.Get(0).(ports.PaymentIntent), args.Error(1)
}

func (m *MockPaymentGateway) Verify(ctx context.Context, reference string) (ports.PaymentVerification, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(ports.PaymentVerification), args.Error(1)
}

type MockAssignmentScheduler struct{ mock.Mock }

func (m *MockAssignmentScheduler) Schedule(orderID kernel.UUID) {
	m.Called(orderID)
}

func (m *MockAssignmentScheduler) Cancel(orderID kernel.UUID) {
	m.Called(orderID)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRoute(t *testing.T) (kernel.GeoPoint, kernel.GeoPoint) {
	t.Helper()
	pickup, err := kernel.NewGeoPoint(3.3792, 6.5244)
	require.NoError(t, err)
	delivery, err := kernel.NewGeoPoint(3.4216, 6.4478)
	require.NoError(t, err)
	return pickup, delivery
}

func testPackage(t *testing.T) order.Package {
	t.Helper()
	pkg, err := order.NewPackage(2.5, "30x20x10", "books")
	require.NoError(t, err)
	return pkg
}

func newTestOrder(t *testing.T, customerID kernel.UUID) *order.Order {
	t.Helper()
	pickup, delivery := testRoute(t)

	aggregate, err := order.NewOrder(
		kernel.NewUUID(), customerID, pickup, delivery, testPackage(t), 1500.00, nil)
	require.NoError(t, err)
	aggregate.CommitChanges()
	return aggregate
}

func testActor(t *testing.T, role account.Role) account.Actor {
	t.Helper()
	actor, err := account.NewActor(kernel.NewUUID(), role)
	require.NoError(t, err)
	return actor
}

func testDriverAt(t *testing.T, longitude, latitude float64) *driver.Driver {
	t.Helper()
	point, err := kernel.NewGeoPoint(longitude, latitude)
	require.NoError(t, err)
	location, err := driver.NewLocation(point, time.Now().UTC())
	require.NoError(t, err)
	d, err := driver.NewDriver(kernel.NewUUID(), "Ada Obi", true, location)
	require.NoError(t, err)
	return d
}
