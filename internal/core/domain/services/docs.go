// Package services provides domain services that compute over domain entities
// without belonging to any single one of them.
//
// The package includes:
//   - StatusComputer: derives an order's tracking snapshot (state and map markers)
//     from its placement time and the current time
//
// Domain services here are pure: no I/O, no clocks, no goroutines. The current
// time is always passed in by the caller.
package services
