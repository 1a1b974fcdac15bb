// Package order provides the Order aggregate root and its lifecycle state
// machine for the delivery-logistics domain.
//
// The package includes:
//   - Order: the aggregate root managing identity, pricing, assignment, and
//     lifecycle state
//   - Status: a state machine enforcing the allowed transition table and the
//     role-gated authorization policy for transition requests
//   - StatusChange: append-only audit entries recorded alongside every
//     status mutation
//   - Package: value object describing the parcel being delivered
//
// Key business rules:
//   - Status follows created -> assigned -> picked_up -> delivered, with
//     cancellation and failure branches; cancelled, failed, and delivered are
//     terminal
//   - A driver reference is present exactly when the order has been assigned
//   - Transitions to picked_up/delivered/failed require the driver
//     capability; cancellation requires the customer or dispatch capability
//   - Every status mutation produces exactly one StatusChange entry, persisted
//     atomically with the order by the repository layer
package order
