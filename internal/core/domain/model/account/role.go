package account

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Role identifies the capability group of an actor.
type Role int

const (
	// RoleUnknown represents an invalid or undefined role.
	// This value (0) helps catch uninitialized Role values.
	RoleUnknown Role = iota

	// RoleCustomer places orders and may cancel their own orders.
	RoleCustomer

	// RoleDriver can be assigned deliveries, reports location, and moves
	// orders through pickup, delivery, and failure.
	RoleDriver

	// RoleDispatcher operates the platform: force-assigns drivers and
	// cancels orders.
	RoleDispatcher

	// RoleAdmin carries the dispatch capability plus full read access.
	RoleAdmin
)

// getRoleStrings returns a map of Role values to their string representations.
func getRoleStrings() map[Role]string {
	return map[Role]string{
		RoleUnknown:    "unknown",
		RoleCustomer:   "customer",
		RoleDriver:     "driver",
		RoleDispatcher: "dispatcher",
		RoleAdmin:      "admin",
	}
}

// getValidRoleStrings returns only valid Role values to support validation
// and parsing.
func getValidRoleStrings() map[Role]string {
	//nolint:exhaustive // RoleUnknown is intentionally excluded as it's invalid
	return map[Role]string{
		RoleCustomer:   "customer",
		RoleDriver:     "driver",
		RoleDispatcher: "dispatcher",
		RoleAdmin:      "admin",
	}
}

// RoleFromString parses the wire representation of a role.
// Returns an error for unknown values.
func RoleFromString(s string) (Role, error) {
	for role, str := range getValidRoleStrings() {
		if str == s {
			return role, nil
		}
	}
	return RoleUnknown, errs.NewValueIsInvalidErrorWithCause(
		"role", fmt.Errorf("%q is not a valid role", s))
}

// Validate checks if the Role value is valid.
// RoleUnknown (0) and any other values are invalid.
func (r Role) Validate() error {
	if _, ok := getValidRoleStrings()[r]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"role", fmt.Errorf("%d is not a valid role", r))
	}
	return nil
}

// String returns the lowercase wire name of the role.
// This method implements the fmt.Stringer interface and is safe to call on
// any Role value, including invalid ones.
func (r Role) String() string {
	if str, ok := getRoleStrings()[r]; ok {
		return str
	}
	return "unknown"
}

// CanDrive reports whether the role carries the driver capability.
func (r Role) CanDrive() bool {
	return r == RoleDriver
}

// CanDispatch reports whether the role carries the dispatch capability.
func (r Role) CanDispatch() bool {
	return r == RoleDispatcher || r == RoleAdmin
}

// CanCancelOrders reports whether the role may cancel orders.
// Customers cancel their own orders; dispatchers and admins cancel any.
func (r Role) CanCancelOrders() bool {
	return r == RoleCustomer || r.CanDispatch()
}
