package commands_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestInitializePaymentCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	customerID := kernel.NewUUID()
	aggregate := newTestOrder(t, customerID)
	actor, err := account.NewActor(customerID, account.RoleCustomer)
	require.NoError(t, err)

	cmd, err := commands.NewInitializePaymentCommand(aggregate.ID(), actor, "ada@example.com")
	require.NoError(t, err)

	reference := commands.PaymentReference(aggregate.ID())
	intent := ports.PaymentIntent{
		Reference:        reference,
		AuthorizationURL: "https://checkout.example.com/abc",
		AccessCode:       "abc",
	}

	repo := new(MockOrderRepository)
	uow := new(MockUoW)
	gateway := new(MockPaymentGateway)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once(),
		gateway.On("Initialize", mock.Anything, reference, int64(150000), "ada@example.com").
			Return(intent, nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Update", mock.Anything, aggregate).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewInitializePaymentCommandHandler(factory, gateway)
	got, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, intent, got)
	require.NotNil(t, aggregate.PaymentReference())
	assert.Equal(t, reference, *aggregate.PaymentReference())
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	gateway.AssertExpectations(t)
}

func TestInitializePaymentCommandHandler_Handle_AccessDenied(t *testing.T) {
	ctx := t.Context()
	aggregate := newTestOrder(t, kernel.NewUUID())
	stranger := testActor(t, account.RoleCustomer)

	cmd, err := commands.NewInitializePaymentCommand(aggregate.ID(), stranger, "eve@example.com")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewInitializePaymentCommandHandler(factory, new(MockPaymentGateway))
	_, err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, commands.ErrOrderAccessDenied)
}

func TestInitializePaymentCommandHandler_Handle_DispatcherMayInitialize(t *testing.T) {
	ctx := t.Context()
	aggregate := newTestOrder(t, kernel.NewUUID())
	dispatcher := testActor(t, account.RoleDispatcher)

	cmd, err := commands.NewInitializePaymentCommand(aggregate.ID(), dispatcher, "ops@example.com")
	require.NoError(t, err)

	reference := commands.PaymentReference(aggregate.ID())

	repo := new(MockOrderRepository)
	uow := new(MockUoW)
	gateway := new(MockPaymentGateway)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once(),
		gateway.On("Initialize", mock.Anything, reference, int64(150000), "ops@example.com").
			Return(ports.PaymentIntent{Reference: reference}, nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Update", mock.Anything, aggregate).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewInitializePaymentCommandHandler(factory, gateway)
	_, err = h.Handle(ctx, cmd)
	require.NoError(t, err)
}

func TestInitializePaymentCommandHandler_Handle_TerminalOrder(t *testing.T) {
	ctx := t.Context()
	customerID := kernel.NewUUID()
	aggregate := newTestOrder(t, customerID)
	customer, err := account.NewActor(customerID, account.RoleCustomer)
	require.NoError(t, err)
	require.NoError(t, aggregate.TransitionTo(order.Cancelled, customer))

	cmd, err := commands.NewInitializePaymentCommand(aggregate.ID(), customer, "ada@example.com")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, aggregate.ID()).Return(aggregate, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewInitializePaymentCommandHandler(factory, new(MockPaymentGateway))
	_, err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, order.ErrInvalidState)
}

func TestInitializePaymentCommand_RejectsBadEmail(t *testing.T) {
	actor := testActor(t, account.RoleCustomer)

	_, err := commands.NewInitializePaymentCommand(kernel.NewUUID(), actor, "not-an-email")
	require.Error(t, err)

	_, err = commands.NewInitializePaymentCommand(kernel.NewUUID(), actor, "")
	require.Error(t, err)
}
