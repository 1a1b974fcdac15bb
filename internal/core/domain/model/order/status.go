package order

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements a state machine with defined transitions to ensure orders
// follow the correct business workflow.
//
// State transitions:
//
//	Created ──┬──> Assigned ──┬──> PickedUp ──┬──> Delivered
//	          │               │               └──> Failed
//	          │               ├──> Cancelled
//	          │               └──> Failed
//	          └──> Cancelled
//
// Delivered, Cancelled, and Failed are terminal: no further transitions are
// allowed out of them. Status is a value object that validates transitions,
// enforces the per-transition authorization policy, and provides string
// representations for persistence and display.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Created is the initial status of a freshly submitted order.
	// Orders in this status wait for payment confirmation and assignment.
	Created

	// Assigned indicates a driver has been matched to the order.
	Assigned

	// PickedUp indicates the assigned driver has collected the package.
	PickedUp

	// Delivered indicates the package reached its destination. Terminal.
	Delivered

	// Cancelled indicates the order was cancelled before delivery. Terminal.
	Cancelled

	// Failed indicates the order could not be completed, either because no
	// driver became available or the driver reported a failure. Terminal.
	Failed
)

var (
	// ErrInvalidTransition is the classification target for every status
	// change not allowed by the transition table.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrTransitionForbidden is the classification target for transition
	// requests made by an actor lacking the required capability.
	ErrTransitionForbidden = errors.New("actor is not allowed to perform this transition")
)

// getStatusStrings returns a map of Status values to their wire representations.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Created:   "created",
		Assigned:  "assigned",
		PickedUp:  "picked_up",
		Delivered: "delivered",
		Cancelled: "cancelled",
		Failed:    "failed",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Created:   "created",
		Assigned:  "assigned",
		PickedUp:  "picked_up",
		Delivered: "delivered",
		Cancelled: "cancelled",
		Failed:    "failed",
	}
}

// getAllowedTransitions is the single source of truth for the lifecycle
// state machine. Terminal statuses map to an empty set.
func getAllowedTransitions() map[Status][]Status {
	return map[Status][]Status{
		Created:   {Assigned, Cancelled},
		Assigned:  {PickedUp, Cancelled, Failed},
		PickedUp:  {Delivered, Failed},
		Delivered: {},
		Cancelled: {},
		Failed:    {},
	}
}

// getTransitionPolicy is the authorization table keyed by target status.
// A transition request is permitted when the actor's role satisfies the
// predicate for the requested target. Targets missing from the table cannot
// be requested by actors at all (assignment goes through Order.Assign).
func getTransitionPolicy() map[Status]func(account.Role) bool {
	return map[Status]func(account.Role) bool{
		PickedUp:  account.Role.CanDrive,
		Delivered: account.Role.CanDrive,
		Failed:    account.Role.CanDrive,
		Cancelled: account.Role.CanCancelOrders,
	}
}

// StatusFromString parses the wire representation of a status.
func StatusFromString(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is valid.
// Unknown (0) and out-of-range values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the lowercase wire name of the status.
// This method implements the fmt.Stringer interface and is safe to call on
// any Status value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no further transitions are allowed out of s.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled || s == Failed
}

// CanTransitionTo reports whether the transition table permits moving from
// s to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range getAllowedTransitions()[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo validates a requested transition against both the transition
// table and the authorization policy, returning the new status on success.
//
// The check order matters: an impossible transition fails with
// ErrInvalidTransition regardless of the actor's role, while a possible but
// unauthorized one fails with ErrTransitionForbidden.
func (s Status) TransitionTo(next Status, role account.Role) (Status, error) {
	if err := next.Validate(); err != nil {
		return Unknown, err
	}

	if !s.CanTransitionTo(next) {
		return Unknown, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}

	permitted, ok := getTransitionPolicy()[next]
	if !ok || !permitted(role) {
		return Unknown, fmt.Errorf("%w: role %s cannot move an order to %s",
			ErrTransitionForbidden, role, next)
	}

	return next, nil
}

// Assign transitions the status to Assigned.
// Only Created orders can be assigned; there is no reassignment.
func (s Status) Assign() (Status, error) {
	if s != Created {
		return Unknown, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, Assigned)
	}
	return Assigned, nil
}

// Fail performs the system-initiated transition to Failed, used when
// assignment retries are exhausted or a driver-side failure is recorded by
// the platform itself. Unlike driver-requested failure it is also allowed
// from Created, since exhaustion happens before any driver was matched.
func (s Status) Fail() (Status, error) {
	if s.IsTerminal() {
		return Unknown, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, Failed)
	}
	return Failed, nil
}

// ValidateCanHaveDriver validates the consistency between order status and
// driver assignment. A driver reference must be present exactly when the
// order has progressed to Assigned or beyond (with Failed allowed either
// way, covering both retry exhaustion and failure after assignment).
func (s Status) ValidateCanHaveDriver(hasDriver bool) error {
	switch s {
	case Assigned, PickedUp, Delivered:
		if !hasDriver {
			return errs.NewValueIsInvalidErrorWithCause(
				"status is invalid",
				fmt.Errorf("%s order must have a driver", s))
		}
	case Created, Cancelled:
		if hasDriver {
			return errs.NewValueIsInvalidErrorWithCause(
				"status is invalid",
				fmt.Errorf("%s order must not have a driver", s))
		}
	case Unknown, Failed:
		// Failed orders may or may not carry a driver reference.
	}
	return nil
}
