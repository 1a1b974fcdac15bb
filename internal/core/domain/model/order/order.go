package order

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not
	// created through NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

	// ErrInvalidState classifies operations that are not valid for the
	// order's current status, including lost compare-and-set races detected
	// by the repository layer.
	ErrInvalidState = errors.New("operation is not valid for the current order status")
)

// Order is the aggregate root for a delivery order. It owns the order's
// identity, parties, route, parcel, price, payment verification flag, and
// lifecycle status, and it is the only place allowed to mutate that status.
//
// Every status mutation appends a StatusChange to the aggregate's set of
// uncommitted changes; the repository persists them atomically with the
// order row. The aggregate also remembers the status it was loaded with
// (see LoadedStatus), which repositories use as the compare-and-set
// precondition when writing updates back.
type Order struct {
	id         kernel.UUID
	customerID kernel.UUID
	driverID   *kernel.UUID
	paymentRef *string

	pickup   kernel.GeoPoint
	delivery kernel.GeoPoint
	pkg      Package

	price          float64
	status         Status
	verified       bool
	goodsImagePath *string

	// loadedStatus is the status at construction or restoration time,
	// used as the optimistic-concurrency precondition on update.
	loadedStatus Status

	// uncommittedChanges are audit entries not yet persisted.
	uncommittedChanges []StatusChange

	isConstructed bool
}

// NewOrder creates a freshly submitted order in Created status with a
// Created audit entry attributed to the customer. Price must already be
// computed (see services.PricingCalculator) and non-negative.
func NewOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	pickup kernel.GeoPoint,
	delivery kernel.GeoPoint,
	pkg Package,
	price float64,
	goodsImagePath *string,
) (*Order, error) {
	o := &Order{
		status:         Created,
		loadedStatus:   Created,
		goodsImagePath: goodsImagePath,
		isConstructed:  true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setPickup(pickup),
		o.setDelivery(delivery),
		o.setPackage(pkg),
		o.setPrice(price),
	); err != nil {
		return nil, err
	}

	o.recordChange(Created, &customerID)
	return o, nil
}

// RestoreOrder reconstructs an Order aggregate from persistent storage.
// Unlike NewOrder it accepts any valid status, performs the driver/status
// consistency check, and records no audit entry. The restored status becomes
// the compare-and-set baseline for subsequent updates.
func RestoreOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	driverID *kernel.UUID,
	paymentRef *string,
	pickup kernel.GeoPoint,
	delivery kernel.GeoPoint,
	pkg Package,
	price float64,
	status Status,
	verified bool,
	goodsImagePath *string,
) (*Order, error) {
	o := &Order{
		paymentRef:     paymentRef,
		verified:       verified,
		goodsImagePath: goodsImagePath,
		isConstructed:  true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setPickup(pickup),
		o.setDelivery(delivery),
		o.setPackage(pkg),
		o.setPrice(price),
		o.setStatus(status),
		o.setDriverID(driverID),
	); err != nil {
		return nil, err
	}

	if err := status.ValidateCanHaveDriver(driverID != nil); err != nil {
		return nil, err
	}

	o.loadedStatus = status
	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// CustomerID returns the customer that placed the order.
func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// Driver returns the assigned driver's ID, or nil if no driver is assigned.
func (o *Order) Driver() *kernel.UUID {
	return o.driverID
}

// PaymentReference returns the payment reference, or nil if payment was
// never initialized.
func (o *Order) PaymentReference() *string {
	return o.paymentRef
}

// Pickup returns the pickup point.
func (o *Order) Pickup() kernel.GeoPoint {
	return o.pickup
}

// Delivery returns the delivery point.
func (o *Order) Delivery() kernel.GeoPoint {
	return o.delivery
}

// Package returns the parcel details.
func (o *Order) Package() Package {
	return o.pkg
}

// Price returns the computed price.
func (o *Order) Price() float64 {
	return o.price
}

// Status returns the current lifecycle status.
func (o *Order) Status() Status {
	return o.status
}

// IsVerified reports whether payment has been confirmed for the order.
func (o *Order) IsVerified() bool {
	return o.verified
}

// GoodsImagePath returns the stored goods-image path, or nil when the
// customer attached no image.
func (o *Order) GoodsImagePath() *string {
	return o.goodsImagePath
}

// LoadedStatus returns the status the aggregate was constructed or restored
// with. Repositories use it as the expected current value in
// compare-and-set updates, so a concurrent writer that already moved the
// order on is detected as zero affected rows.
func (o *Order) LoadedStatus() Status {
	return o.loadedStatus
}

// UncommittedChanges returns audit entries recorded since the aggregate was
// loaded, in the order they happened.
func (o *Order) UncommittedChanges() []StatusChange {
	return o.uncommittedChanges
}

// CommitChanges drops the uncommitted audit entries after the repository has
// persisted them, and advances the compare-and-set baseline to the current
// status.
func (o *Order) CommitChanges() {
	o.uncommittedChanges = nil
	o.loadedStatus = o.status
}

// Assign matches the order with a driver and moves it to Assigned.
// The order must currently be in Created status; there is no reassignment.
// actorID is recorded in the audit entry: the requesting dispatcher for
// explicit assignment, or the driver themself for the automatic
// payment-confirmation path. It must not be nil.
func (o *Order) Assign(driverID kernel.UUID, actorID *kernel.UUID) error {
	if err := driverID.Validate(); err != nil {
		return err
	}
	if actorID == nil {
		return errs.NewValueIsRequiredError("actorID")
	}

	newStatus, err := o.status.Assign()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.driverID = &driverID
	o.recordChange(newStatus, actorID)
	return nil
}

// TransitionTo applies a role-gated lifecycle transition requested by an
// actor. The transition table and the authorization policy both live in
// Status.TransitionTo; on success the order's status is updated and an
// audit entry attributed to the actor is recorded. On failure the order is
// left unchanged.
func (o *Order) TransitionTo(next Status, actor account.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}

	newStatus, err := o.status.TransitionTo(next, actor.Role())
	if err != nil {
		return err
	}

	o.status = newStatus
	actorID := actor.ID()
	o.recordChange(newStatus, &actorID)
	return nil
}

// MarkFailed performs the system-initiated transition to Failed, recording
// an audit entry with no actor. Used when the assignment retry loop gives
// up. Fails for orders already in a terminal status.
func (o *Order) MarkFailed() error {
	newStatus, err := o.status.Fail()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.recordChange(newStatus, nil)
	return nil
}

// MarkVerified flags the order as paid. Only non-terminal orders can be
// verified; verifying twice is a no-op.
func (o *Order) MarkVerified() error {
	if o.status.IsTerminal() {
		return fmt.Errorf("%w: cannot verify payment for %s order", ErrInvalidState, o.status)
	}
	o.verified = true
	return nil
}

// AttachPaymentReference links the gateway payment reference to the order
// when payment is initialized.
func (o *Order) AttachPaymentReference(ref string) error {
	if ref == "" {
		return errs.NewValueIsRequiredError("payment reference")
	}
	o.paymentRef = &ref
	return nil
}

func (o *Order) recordChange(status Status, actorID *kernel.UUID) {
	o.uncommittedChanges = append(o.uncommittedChanges, newStatusChange(o.id, status, actorID))
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customerID", err)
	}
	o.customerID = id
	return nil
}

func (o *Order) setDriverID(id *kernel.UUID) error {
	if id == nil {
		return nil
	}
	if err := id.Validate(); err != nil {
		return err
	}
	o.driverID = id
	return nil
}

func (o *Order) setPickup(point kernel.GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}
	o.pickup = point
	return nil
}

func (o *Order) setDelivery(point kernel.GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}
	o.delivery = point
	return nil
}

func (o *Order) setPackage(pkg Package) error {
	if err := pkg.Validate(); err != nil {
		return err
	}
	o.pkg = pkg
	return nil
}

func (o *Order) setPrice(price float64) error {
	if price < 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"price", fmt.Errorf("%f is negative", price))
	}
	o.price = price
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}
