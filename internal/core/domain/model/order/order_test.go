package order_test

import (
	"testing"

	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPoints(t *testing.T) (kernel.GeoPoint, kernel.GeoPoint) {
	t.Helper()
	pickup, err := kernel.NewGeoPoint(3.3792, 6.5244)
	require.NoError(t, err)
	delivery, err := kernel.NewGeoPoint(3.4216, 6.4483)
	require.NoError(t, err)
	return pickup, delivery
}

func testPackage(t *testing.T) order.Package {
	t.Helper()
	pkg, err := order.NewPackage(2.0, "30x20x10", "books")
	require.NoError(t, err)
	return pkg
}

func newTestOrder(t *testing.T) *order.Order {
	t.Helper()
	pickup, delivery := testPoints(t)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), pickup, delivery, testPackage(t), 1210.00, nil)
	require.NoError(t, err)
	return o
}

func restoredInStatus(t *testing.T, status order.Status, driverID *kernel.UUID) *order.Order {
	t.Helper()
	pickup, delivery := testPoints(t)
	o, err := order.RestoreOrder(
		kernel.NewUUID(), kernel.NewUUID(), driverID, nil,
		pickup, delivery, testPackage(t), 1210.00, status, true, nil)
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("creates order in created status with audit entry", func(t *testing.T) {
		customerID := kernel.NewUUID()
		pickup, delivery := testPoints(t)

		o, err := order.NewOrder(kernel.NewUUID(), customerID, pickup, delivery, testPackage(t), 1210.00, nil)

		require.NoError(t, err)
		assert.Equal(t, order.Created, o.Status())
		assert.Nil(t, o.Driver())
		assert.False(t, o.IsVerified())
		assert.InEpsilon(t, 1210.00, o.Price(), 1e-9)

		changes := o.UncommittedChanges()
		require.Len(t, changes, 1)
		assert.Equal(t, order.Created, changes[0].Status())
		require.NotNil(t, changes[0].ActorID())
		assert.True(t, changes[0].ActorID().IsEqual(customerID))
		assert.False(t, changes[0].At().IsZero())
	})

	t.Run("rejects unconstructed coordinates", func(t *testing.T) {
		pickup, _ := testPoints(t)
		var delivery kernel.GeoPoint

		_, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), pickup, delivery, testPackage(t), 100, nil)

		require.ErrorIs(t, err, kernel.ErrInvalidGeometry)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		pickup, delivery := testPoints(t)

		_, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), pickup, delivery, testPackage(t), -1, nil)

		require.Error(t, err)
	})

	t.Run("rejects unconstructed package", func(t *testing.T) {
		pickup, delivery := testPoints(t)
		var pkg order.Package

		_, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), pickup, delivery, pkg, 100, nil)

		require.ErrorIs(t, err, order.ErrPackageIsNotConstructed)
	})
}

func TestRestoreOrder(t *testing.T) {
	t.Run("restores aggregate and sets compare-and-set baseline", func(t *testing.T) {
		driverID := kernel.NewUUID()

		o := restoredInStatus(t, order.Assigned, &driverID)

		assert.Equal(t, order.Assigned, o.Status())
		assert.Equal(t, order.Assigned, o.LoadedStatus())
		assert.Empty(t, o.UncommittedChanges())
	})

	t.Run("rejects assigned order without driver", func(t *testing.T) {
		pickup, delivery := testPoints(t)

		_, err := order.RestoreOrder(
			kernel.NewUUID(), kernel.NewUUID(), nil, nil,
			pickup, delivery, testPackage(t), 100, order.Assigned, true, nil)

		require.Error(t, err)
	})

	t.Run("rejects created order with driver", func(t *testing.T) {
		pickup, delivery := testPoints(t)
		driverID := kernel.NewUUID()

		_, err := order.RestoreOrder(
			kernel.NewUUID(), kernel.NewUUID(), &driverID, nil,
			pickup, delivery, testPackage(t), 100, order.Created, false, nil)

		require.Error(t, err)
	})
}

func TestOrder_Validate(t *testing.T) {
	t.Run("nil and zero value fail validation", func(t *testing.T) {
		var nilOrder *order.Order
		require.ErrorIs(t, nilOrder.Validate(), order.ErrOrderIsNotConstructed)

		var zero order.Order
		require.ErrorIs(t, zero.Validate(), order.ErrOrderIsNotConstructed)
	})

	t.Run("constructed order passes validation", func(t *testing.T) {
		require.NoError(t, newTestOrder(t).Validate())
	})
}

func TestOrder_Assign(t *testing.T) {
	t.Run("assigns driver and records actor", func(t *testing.T) {
		o := newTestOrder(t)
		driverID := kernel.NewUUID()
		dispatcherID := kernel.NewUUID()

		err := o.Assign(driverID, &dispatcherID)

		require.NoError(t, err)
		assert.Equal(t, order.Assigned, o.Status())
		require.NotNil(t, o.Driver())
		assert.True(t, o.Driver().IsEqual(driverID))

		changes := o.UncommittedChanges()
		require.Len(t, changes, 2) // created + assigned
		assert.Equal(t, order.Assigned, changes[1].Status())
		require.NotNil(t, changes[1].ActorID())
		assert.True(t, changes[1].ActorID().IsEqual(dispatcherID))
	})

	t.Run("rejects assignment outside created status", func(t *testing.T) {
		driverID := kernel.NewUUID()
		o := restoredInStatus(t, order.Assigned, &driverID)
		actorID := kernel.NewUUID()

		err := o.Assign(kernel.NewUUID(), &actorID)

		require.ErrorIs(t, err, order.ErrInvalidTransition)
		assert.True(t, o.Driver().IsEqual(driverID), "driver must be unchanged")
	})

	t.Run("requires an actor", func(t *testing.T) {
		o := newTestOrder(t)

		err := o.Assign(kernel.NewUUID(), nil)

		require.Error(t, err)
		assert.Equal(t, order.Created, o.Status())
	})
}

func TestOrder_TransitionTo(t *testing.T) {
	driverActor := func(t *testing.T) account.Actor {
		t.Helper()
		actor, err := account.NewActor(kernel.NewUUID(), account.RoleDriver)
		require.NoError(t, err)
		return actor
	}

	t.Run("driver moves assigned order to picked up", func(t *testing.T) {
		driverID := kernel.NewUUID()
		o := restoredInStatus(t, order.Assigned, &driverID)
		actor := driverActor(t)

		err := o.TransitionTo(order.PickedUp, actor)

		require.NoError(t, err)
		assert.Equal(t, order.PickedUp, o.Status())

		changes := o.UncommittedChanges()
		require.Len(t, changes, 1)
		assert.Equal(t, order.PickedUp, changes[0].Status())
		require.NotNil(t, changes[0].ActorID())
		assert.True(t, changes[0].ActorID().IsEqual(actor.ID()))
	})

	t.Run("forbidden transition leaves order untouched", func(t *testing.T) {
		driverID := kernel.NewUUID()
		o := restoredInStatus(t, order.PickedUp, &driverID)
		customer, err := account.NewActor(kernel.NewUUID(), account.RoleCustomer)
		require.NoError(t, err)

		err = o.TransitionTo(order.Delivered, customer)

		require.ErrorIs(t, err, order.ErrTransitionForbidden)
		assert.Equal(t, order.PickedUp, o.Status())
		assert.Empty(t, o.UncommittedChanges(), "no audit entry on rejected transition")
	})

	t.Run("terminal order rejects every transition", func(t *testing.T) {
		driverID := kernel.NewUUID()
		o := restoredInStatus(t, order.Delivered, &driverID)

		for _, next := range []order.Status{order.PickedUp, order.Cancelled, order.Failed} {
			err := o.TransitionTo(next, driverActor(t))
			require.ErrorIs(t, err, order.ErrInvalidTransition, "to %s", next)
		}
		assert.Equal(t, order.Delivered, o.Status())
	})

	t.Run("rejects unconstructed actor", func(t *testing.T) {
		driverID := kernel.NewUUID()
		o := restoredInStatus(t, order.Assigned, &driverID)

		err := o.TransitionTo(order.PickedUp, account.Actor{})

		require.ErrorIs(t, err, account.ErrActorIsNotConstructed)
	})
}

func TestOrder_MarkFailed(t *testing.T) {
	t.Run("fails created order with nil actor in audit entry", func(t *testing.T) {
		o := restoredInStatus(t, order.Created, nil)

		err := o.MarkFailed()

		require.NoError(t, err)
		assert.Equal(t, order.Failed, o.Status())

		changes := o.UncommittedChanges()
		require.Len(t, changes, 1)
		assert.Equal(t, order.Failed, changes[0].Status())
		assert.Nil(t, changes[0].ActorID())
	})

	t.Run("rejects failing a terminal order", func(t *testing.T) {
		o := restoredInStatus(t, order.Cancelled, nil)

		require.ErrorIs(t, o.MarkFailed(), order.ErrInvalidTransition)
	})
}

func TestOrder_MarkVerified(t *testing.T) {
	t.Run("marks non-terminal order verified", func(t *testing.T) {
		o := newTestOrder(t)

		require.NoError(t, o.MarkVerified())
		assert.True(t, o.IsVerified())
	})

	t.Run("rejects verifying a terminal order", func(t *testing.T) {
		o := restoredInStatus(t, order.Cancelled, nil)

		require.ErrorIs(t, o.MarkVerified(), order.ErrInvalidState)
	})
}

func TestOrder_CommitChanges(t *testing.T) {
	t.Run("clears audit entries and advances baseline", func(t *testing.T) {
		o := newTestOrder(t)
		actorID := kernel.NewUUID()
		require.NoError(t, o.Assign(kernel.NewUUID(), &actorID))
		require.Len(t, o.UncommittedChanges(), 2)
		assert.Equal(t, order.Created, o.LoadedStatus())

		o.CommitChanges()

		assert.Empty(t, o.UncommittedChanges())
		assert.Equal(t, order.Assigned, o.LoadedStatus())
	})
}

func TestOrder_AttachPaymentReference(t *testing.T) {
	t.Run("attaches non-empty reference", func(t *testing.T) {
		o := newTestOrder(t)

		require.NoError(t, o.AttachPaymentReference("order_abc123"))
		require.NotNil(t, o.PaymentReference())
		assert.Equal(t, "order_abc123", *o.PaymentReference())
	})

	t.Run("rejects empty reference", func(t *testing.T) {
		o := newTestOrder(t)

		require.Error(t, o.AttachPaymentReference(""))
		assert.Nil(t, o.PaymentReference())
	})
}
