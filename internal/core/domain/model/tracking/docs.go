// Package tracking holds the value types produced by order tracking: the lifecycle
// State, map Markers, the Snapshot of an order at an instant and the GroupID that
// addresses everyone watching an order.
//
// State transitions are implied by time, not stored: a Snapshot is always derived
// from (order, now) by the status computer and never partially built.
package tracking
