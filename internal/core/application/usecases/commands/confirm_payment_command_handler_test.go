package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// confirmPaymentFixture wires a ConfirmPaymentCommandHandler whose
// verification transaction and matching attempt run against separate
// mocked units of work.
type confirmPaymentFixture struct {
	aggregate  *order.Order
	reference  string
	cmd        commands.ConfirmPaymentCommand
	gateway    *MockPaymentGateway
	scheduler  *MockAssignmentScheduler
	notifier   *MockNotificationPublisher
	verifyUoW  *MockUoW
	verifyRepo *MockOrderRepository
	matchUoW   *MockUoW
	matchRepo  *MockOrderRepository
	driverRepo *MockDriverRepository
	handler    commands.ConfirmPaymentCommandHandler
}

func newConfirmPaymentFixture(t *testing.T) *confirmPaymentFixture {
	t.Helper()

	aggregate := newTestOrder(t, kernel.NewUUID())
	reference := commands.PaymentReference(aggregate.ID())
	require.NoError(t, aggregate.AttachPaymentReference(reference))

	cmd, err := commands.NewConfirmPaymentCommand(reference)
	require.NoError(t, err)

	f := &confirmPaymentFixture{
		aggregate:  aggregate,
		reference:  reference,
		cmd:        cmd,
		gateway:    new(MockPaymentGateway),
		scheduler:  new(MockAssignmentScheduler),
		notifier:   new(MockNotificationPublisher),
		verifyUoW:  new(MockUoW),
		verifyRepo: new(MockOrderRepository),
		matchUoW:   new(MockUoW),
		matchRepo:  new(MockOrderRepository),
		driverRepo: new(MockDriverRepository),
	}

	orderFactory := new(MockOrderUoWFactory)
	orderFactory.On("Create").Return(f.verifyUoW).Once()

	matchFactory := new(MockUoWFactory)
	matchFactory.On("Create").Return(f.matchUoW).Maybe()

	autoAssign, err := commands.NewAutoAssignOrderCommandHandler(
		matchFactory,
		commands.MatchingConfig{LocationFreshness: 10 * time.Minute},
		f.notifier,
		testLogger(),
	)
	require.NoError(t, err)

	f.handler = commands.NewConfirmPaymentCommandHandler(
		orderFactory, f.gateway, autoAssign, f.scheduler, f.notifier, testLogger())
	return f
}

func (f *confirmPaymentFixture) expectVerifyTx(t *testing.T) {
	t.Helper()
	ctx := t.Context()
	mock.InOrder(
		f.verifyUoW.On("Begin", ctx).Return(nil).Once(),
		f.verifyUoW.On("OrderRepository").Return(f.verifyRepo).Once(),
		f.verifyRepo.On("GetByPaymentReference", mock.Anything, f.reference).
			Return(f.aggregate, nil).Once(),
		f.verifyUoW.On("OrderRepository").Return(f.verifyRepo).Once(),
		f.verifyRepo.On("Update", mock.Anything, f.aggregate).Return(nil).Once(),
		f.verifyUoW.On("Commit", ctx).Return(nil).Once(),
		f.verifyUoW.On("Rollback", ctx).Return(nil).Once(),
	)
}

func TestConfirmPaymentCommandHandler_Handle_AssignsDriverImmediately(t *testing.T) {
	ctx := t.Context()
	f := newConfirmPaymentFixture(t)
	candidate := testDriverAt(t, 3.3792, 6.5244)

	f.gateway.On("Verify", mock.Anything, f.reference).
		Return(ports.PaymentVerification{Reference: f.reference, AmountMinor: 150000}, nil).Once()

	f.expectVerifyTx(t)

	mock.InOrder(
		f.matchUoW.On("Begin", ctx).Return(nil).Once(),
		f.matchUoW.On("OrderRepository").Return(f.matchRepo).Once(),
		f.matchRepo.On("Get", mock.Anything, f.aggregate.ID()).Return(f.aggregate, nil).Once(),
		f.matchUoW.On("DriverRepository").Return(f.driverRepo).Once(),
		f.driverRepo.On("GetAvailable", mock.Anything, mock.AnythingOfType("time.Time")).
			Return([]*driver.Driver{candidate}, nil).Once(),
		f.matchUoW.On("OrderRepository").Return(f.matchRepo).Once(),
		f.matchRepo.On("Update", mock.Anything, f.aggregate).Return(nil).Once(),
		f.matchUoW.On("Commit", ctx).Return(nil).Once(),
		f.matchUoW.On("Rollback", ctx).Return(nil).Once(),
	)

	// driver assignment notification, then payment success with driver context
	f.notifier.On("Publish", mock.Anything, mock.MatchedBy(func(n ports.Notification) bool {
		return n.Kind == ports.NotificationDriverAssignment && n.RecipientID.IsEqual(candidate.ID())
	})).Return(nil).Once()
	f.notifier.On("Publish", mock.Anything, mock.MatchedBy(func(n ports.Notification) bool {
		return n.Kind == ports.NotificationPaymentSuccess &&
			n.DriverID != nil && n.DriverID.IsEqual(candidate.ID())
	})).Return(nil).Once()

	err := f.handler.Handle(ctx, f.cmd)
	require.NoError(t, err)
	assert.True(t, f.aggregate.IsVerified())
	assert.Equal(t, order.Assigned, f.aggregate.Status())
	f.scheduler.AssertNotCalled(t, "Schedule", mock.Anything)
	f.notifier.AssertExpectations(t)
}

func TestConfirmPaymentCommandHandler_Handle_NoDriverSchedulesRetry(t *testing.T) {
	ctx := t.Context()
	f := newConfirmPaymentFixture(t)

	f.gateway.On("Verify", mock.Anything, f.reference).
		Return(ports.PaymentVerification{Reference: f.reference, AmountMinor: 150000}, nil).Once()

	f.expectVerifyTx(t)

	mock.InOrder(
		f.matchUoW.On("Begin", ctx).Return(nil).Once(),
		f.matchUoW.On("OrderRepository").Return(f.matchRepo).Once(),
		f.matchRepo.On("Get", mock.Anything, f.aggregate.ID()).Return(f.aggregate, nil).Once(),
		f.matchUoW.On("DriverRepository").Return(f.driverRepo).Once(),
		f.driverRepo.On("GetAvailable", mock.Anything, mock.AnythingOfType("time.Time")).
			Return([]*driver.Driver{}, nil).Once(),
		f.matchUoW.On("Rollback", ctx).Return(nil).Once(),
	)

	f.scheduler.On("Schedule", f.aggregate.ID()).Once()
	f.notifier.On("Publish", mock.Anything, mock.MatchedBy(func(n ports.Notification) bool {
		return n.Kind == ports.NotificationPaymentSuccess && n.DriverID == nil
	})).Return(nil).Once()

	err := f.handler.Handle(ctx, f.cmd)
	require.NoError(t, err)
	assert.True(t, f.aggregate.IsVerified())
	assert.Equal(t, order.Created, f.aggregate.Status())
	f.scheduler.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestConfirmPaymentCommandHandler_Handle_AmountMismatchIsDeclined(t *testing.T) {
	ctx := t.Context()
	f := newConfirmPaymentFixture(t)

	f.gateway.On("Verify", mock.Anything, f.reference).
		Return(ports.PaymentVerification{Reference: f.reference, AmountMinor: 1}, nil).Once()

	mock.InOrder(
		f.verifyUoW.On("Begin", ctx).Return(nil).Once(),
		f.verifyUoW.On("OrderRepository").Return(f.verifyRepo).Once(),
		f.verifyRepo.On("GetByPaymentReference", mock.Anything, f.reference).
			Return(f.aggregate, nil).Once(),
		f.verifyUoW.On("Rollback", ctx).Return(nil).Once(),
	)

	err := f.handler.Handle(ctx, f.cmd)
	require.ErrorIs(t, err, ports.ErrPaymentDeclined)
	assert.False(t, f.aggregate.IsVerified())
}

func TestConfirmPaymentCommandHandler_Handle_GatewayDeclined(t *testing.T) {
	f := newConfirmPaymentFixture(t)

	f.gateway.On("Verify", mock.Anything, f.reference).
		Return(ports.PaymentVerification{}, ports.ErrPaymentDeclined).Once()

	err := f.handler.Handle(t.Context(), f.cmd)
	require.ErrorIs(t, err, ports.ErrPaymentDeclined)
	assert.False(t, f.aggregate.IsVerified())
}

func TestConfirmPaymentCommandHandler_Handle_GatewayTimeout(t *testing.T) {
	f := newConfirmPaymentFixture(t)

	f.gateway.On("Verify", mock.Anything, f.reference).
		Return(ports.PaymentVerification{}, ports.ErrPaymentGatewayTimeout).Once()

	err := f.handler.Handle(t.Context(), f.cmd)
	require.ErrorIs(t, err, ports.ErrPaymentGatewayTimeout)
}
