package tracking

import "pizzatracker/internal/core/domain/model/kernel"

// Marker is a labeled map point accompanying a snapshot. It is a rendering hint
// and is never persisted.
type Marker struct {
	Description string
	Latitude    float64
	Longitude   float64
	ShowPopup   bool
}

// NewMarker places a marker at loc.
func NewMarker(description string, loc kernel.Location, showPopup bool) Marker {
	return Marker{
		Description: description,
		Latitude:    loc.Latitude(),
		Longitude:   loc.Longitude(),
		ShowPopup:   showPopup,
	}
}
