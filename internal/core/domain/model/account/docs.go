// Package account models the actors that operate on delivery orders.
//
// The platform distinguishes two capability groups that the order lifecycle
// cares about: the driver capability (can be assigned deliveries, reports
// location, moves orders through pickup and delivery) and the dispatch
// capability (can force-assign drivers and cancel orders on behalf of the
// platform). Customers hold neither but may cancel their own orders.
//
// Authentication is out of scope; actors arrive already authenticated and the
// domain only consumes their identity and role.
package account
