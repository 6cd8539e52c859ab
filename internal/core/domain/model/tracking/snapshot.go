package tracking

import (
	"errors"
	"fmt"

	"pizzatracker/internal/core/domain/model/order"
	"pizzatracker/internal/pkg/errs"
	"pizzatracker/internal/pkg/guard"
)

// ErrSnapshotIsNotConstructed is returned when a zero-value Snapshot is used.
var ErrSnapshotIsNotConstructed = errors.New("Snapshot must be created via NewSnapshot constructor")

// Snapshot is the status of one order at one instant: the order, its lifecycle
// state and the map markers for that state. Snapshots are recomputed on demand
// and discarded after being compared or broadcast.
type Snapshot struct {
	order   *order.Order
	state   State
	markers []Marker

	guard guard.ConstructorGuard
}

// NewSnapshot assembles a snapshot. The marker count must match the state:
// one marker while Preparing or Delivered, two while OutForDelivery.
func NewSnapshot(o *order.Order, state State, markers []Marker) (Snapshot, error) {
	if err := errors.Join(o.Validate(), state.Validate()); err != nil {
		return Snapshot{}, err
	}

	want := 1
	if state == OutForDelivery {
		want = 2
	}
	if len(markers) != want {
		return Snapshot{}, errs.NewValueIsInvalidErrorWithCause(
			"markers",
			fmt.Errorf("%s requires %d markers, got %d", state, want, len(markers)),
		)
	}

	copied := make([]Marker, len(markers))
	copy(copied, markers)

	return Snapshot{
		order:   o,
		state:   state,
		markers: copied,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate checks that the snapshot was built with NewSnapshot.
func (s Snapshot) Validate() error {
	return s.guard.Validate(ErrSnapshotIsNotConstructed)
}

// Order returns the order the snapshot describes.
func (s Snapshot) Order() *order.Order {
	return s.order
}

// State returns the lifecycle state.
func (s Snapshot) State() State {
	return s.state
}

// Markers returns a copy of the map markers.
func (s Snapshot) Markers() []Marker {
	markers := make([]Marker, len(s.markers))
	copy(markers, s.markers)
	return markers
}

// GroupID returns the broadcast group of the snapshot's order.
func (s Snapshot) GroupID() GroupID {
	return NewGroupID(s.order.ID(), s.order.UserID())
}
