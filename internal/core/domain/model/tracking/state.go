package tracking

import (
	"fmt"

	"pizzatracker/internal/pkg/errs"
)

// State is the lifecycle state of a tracked order.
// States are totally ordered by their numeric value: Preparing < OutForDelivery < Delivered.
type State int

const (
	// Unknown represents an invalid or undefined state.
	// This value (0) helps catch uninitialized State values.
	Unknown State = iota

	// Preparing is the state during the preparation window after placement.
	Preparing

	// OutForDelivery is the state while the simulated driver travels to the customer.
	OutForDelivery

	// Delivered is the terminal state. No further transitions happen.
	Delivered
)

func getStateStrings() map[State]string {
	return map[State]string{
		Unknown:        "Unknown",
		Preparing:      "Preparing",
		OutForDelivery: "Out for delivery",
		Delivered:      "Delivered",
	}
}

func getNotificationMessages() map[State]string {
	//nolint:exhaustive // only notify-worthy transitions carry a message
	return map[State]string{
		OutForDelivery: "Your order has been dispatched!",
		Delivered:      "Your order is now delivered. Enjoy!",
	}
}

// Validate rejects Unknown and out-of-range values.
func (s State) Validate() error {
	if s < Preparing || s > Delivered {
		return errs.NewValueIsInvalidErrorWithCause("state is invalid", fmt.Errorf("%d is not a valid state", s))
	}
	return nil
}

func (s State) String() string {
	if str, ok := getStateStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether s ends the lifecycle.
func (s State) IsTerminal() bool {
	return s == Delivered
}

// IsNotifiable reports whether entering s triggers a push notification.
func (s State) IsNotifiable() bool {
	_, ok := getNotificationMessages()[s]
	return ok
}

// Message returns the push notification text for notifiable states.
func (s State) Message() string {
	return getNotificationMessages()[s]
}

// CanFollow reports whether an observer that last saw previous may now see s.
// Lifecycle states never regress; an observer polling slowly may see a later state
// without the ones in between. A zero previous accepts any valid state.
func (s State) CanFollow(previous State) bool {
	if s.Validate() != nil {
		return false
	}
	if previous == Unknown {
		return true
	}
	return s >= previous
}
