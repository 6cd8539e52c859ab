// Package kernel provides core domain primitives for the tracking service.
//
// The package includes:
//   - UUID: a value object for unique identifiers of subscriptions and connections
//   - Location: a geographic point with latitude/longitude validation, offsetting
//     and linear interpolation used by the delivery simulation
//
// Both primitives are immutable and guarded against zero-value use, which makes
// them safe to share between concurrent tracking tasks.
package kernel
