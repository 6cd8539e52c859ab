package services

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"pizzatracker/internal/core/domain/model/kernel"
	"pizzatracker/internal/core/domain/model/order"
	"pizzatracker/internal/core/domain/model/tracking"
)

// ErrInvalidOrder is returned when an order cannot be placed on the delivery timeline,
// either because it is corrupted or because it has no delivery coordinate.
var ErrInvalidOrder = errors.New("invalid order")

const (
	// DefaultPrepDuration is how long an order stays in Preparing.
	DefaultPrepDuration = 10 * time.Second

	// DefaultDeliveryDuration is how long the simulated driver travels.
	DefaultDeliveryDuration = 60 * time.Second

	// Driver start points lie this far from the destination, in degrees.
	driverMinDistance  = 0.01
	driverDistanceSpan = 0.02

	driverSeedStream = 0x9e3779b97f4a7c15
)

// Marker labels shown on the tracking map.
const (
	MarkerYou       = "You"
	MarkerDriver    = "Driver"
	MarkerDelivered = "Delivered"
)

// StatusComputer derives the tracking snapshot of an order from its placement time.
//
// The timeline of an order placed at t0 is:
//
//	[t0, t0+prep)                   Preparing
//	[t0+prep, t0+prep+delivery)     OutForDelivery, driver moving linearly to the destination
//	[t0+prep+delivery, ...)         Delivered
//
// Compute is a pure function of (order, now): the same inputs always produce the
// same snapshot, and for a fixed order the state never decreases as now grows.
type StatusComputer struct {
	prepDuration     time.Duration
	deliveryDuration time.Duration
}

// NewStatusComputer creates a computer with the given phase durations.
// Non-positive durations fall back to the defaults.
func NewStatusComputer(prepDuration, deliveryDuration time.Duration) StatusComputer {
	if prepDuration <= 0 {
		prepDuration = DefaultPrepDuration
	}
	if deliveryDuration <= 0 {
		deliveryDuration = DefaultDeliveryDuration
	}
	return StatusComputer{
		prepDuration:     prepDuration,
		deliveryDuration: deliveryDuration,
	}
}

// PrepDuration returns the length of the Preparing phase.
func (c StatusComputer) PrepDuration() time.Duration {
	return c.prepDuration
}

// DeliveryDuration returns the length of the OutForDelivery phase.
func (c StatusComputer) DeliveryDuration() time.Duration {
	return c.deliveryDuration
}

// Lifetime is the time from placement until the order is delivered.
func (c StatusComputer) Lifetime() time.Duration {
	return c.prepDuration + c.deliveryDuration
}

// Compute returns the snapshot of o at now.
//
// Example:
//
//	computer := services.NewStatusComputer(10*time.Second, 60*time.Second)
//	snapshot, err := computer.Compute(o, o.CreatedAt().Add(40*time.Second))
//	// snapshot.State() == tracking.OutForDelivery, driver halfway
func (c StatusComputer) Compute(o *order.Order, now time.Time) (tracking.Snapshot, error) {
	if err := o.Validate(); err != nil {
		return tracking.Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidOrder, err)
	}

	destination, err := o.DeliveryLocation()
	if err != nil {
		return tracking.Snapshot{}, fmt.Errorf("%w: order %d: %w", ErrInvalidOrder, o.ID(), err)
	}

	elapsed := now.Sub(o.CreatedAt())

	var (
		state   tracking.State
		markers []tracking.Marker
	)

	switch {
	case elapsed < c.prepDuration:
		state = tracking.Preparing
		markers = []tracking.Marker{tracking.NewMarker(MarkerYou, destination, true)}

	case elapsed < c.Lifetime():
		start, err := c.DriverStart(o)
		if err != nil {
			return tracking.Snapshot{}, err
		}

		fraction := float64(elapsed-c.prepDuration) / float64(c.deliveryDuration)
		driver, err := start.Interpolate(destination, fraction)
		if err != nil {
			return tracking.Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidOrder, err)
		}

		state = tracking.OutForDelivery
		markers = []tracking.Marker{
			tracking.NewMarker(MarkerYou, destination, false),
			tracking.NewMarker(MarkerDriver, driver, true),
		}

	default:
		state = tracking.Delivered
		markers = []tracking.Marker{tracking.NewMarker(MarkerDelivered, destination, true)}
	}

	return tracking.NewSnapshot(o, state, markers)
}

// DriverStart returns where the simulated driver sets off for o. The point is
// pseudo-random but seeded by the order id, so it is stable across ticks and restarts.
func (c StatusComputer) DriverStart(o *order.Order) (kernel.Location, error) {
	if err := o.Validate(); err != nil {
		return kernel.Location{}, fmt.Errorf("%w: %w", ErrInvalidOrder, err)
	}

	destination, err := o.DeliveryLocation()
	if err != nil {
		return kernel.Location{}, fmt.Errorf("%w: order %d: %w", ErrInvalidOrder, o.ID(), err)
	}

	rng := rand.New(rand.NewPCG(uint64(o.ID()), driverSeedStream)) //nolint:gosec // simulation only
	distance := driverMinDistance + rng.Float64()*driverDistanceSpan
	angle := rng.Float64() * 2 * math.Pi

	start, err := destination.Shift(distance*math.Cos(angle), distance*math.Sin(angle))
	if err != nil {
		return kernel.Location{}, fmt.Errorf("%w: order %d: %w", ErrInvalidOrder, o.ID(), err)
	}
	return start, nil
}
