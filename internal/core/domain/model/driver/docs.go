// Package driver models delivery drivers as matching candidates.
//
// A Driver combines a verified user identity with its last reported
// position. Positions are last-known only: every location report overwrites
// the previous one, and a position older than the configured freshness
// window is treated as stale and excluded from matching.
//
// The package deliberately contains no lifecycle of its own; user
// registration and verification live outside the core. Drivers enter the
// domain through the repository, which is the single place enforcing the
// availability rules (verified, fresh location, no active order).
package driver
