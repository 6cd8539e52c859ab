package kernel

import (
	"errors"
	"fmt"
	"math"

	"pizzatracker/internal/pkg/errs"
	"pizzatracker/internal/pkg/guard"
)

const (
	// LatitudeMin is the southernmost valid latitude in degrees.
	LatitudeMin = -90.0
	// LatitudeMax is the northernmost valid latitude in degrees.
	LatitudeMax = 90.0
	// LongitudeMin is the westernmost valid longitude in degrees.
	LongitudeMin = -180.0
	// LongitudeMax is the easternmost valid longitude in degrees.
	LongitudeMax = 180.0
)

// ErrLocationIsNotConstructed is returned when attempting to use an improperly initialized Location.
// Locations must be created using NewLocation to ensure validity.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation constructor")

// Location represents a geographic point with validated latitude and longitude.
// Location is an immutable value object; the zero value is invalid and will fail validation.
//
// Example:
//
//	loc, err := kernel.NewLocation(51.5001, -0.1239)
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Printf("Location: %s", loc) // Output: Location(51.500100,-0.123900)
type Location struct { //nolint:recvcheck //using for validation
	latitude  float64
	longitude float64
	guard     guard.ConstructorGuard
}

// NewLocation creates a new Location from latitude and longitude in degrees.
// Returns an error if either coordinate is outside of its valid range.
//
// Parameters:
//   - latitude: degrees in [LatitudeMin..LatitudeMax]
//   - longitude: degrees in [LongitudeMin..LongitudeMax]
func NewLocation(latitude float64, longitude float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLatitude(latitude), loc.setLongitude(longitude)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// Validate checks if the Location was properly constructed using NewLocation.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Latitude returns the latitude in degrees.
func (l Location) Latitude() float64 {
	return l.latitude
}

// Longitude returns the longitude in degrees.
func (l Location) Longitude() float64 {
	return l.longitude
}

// String implements fmt.Stringer.
func (l Location) String() string {
	return fmt.Sprintf("Location(%f,%f)", l.latitude, l.longitude)
}

// IsEqual compares two locations for equality.
// Both locations must be properly constructed for the comparison to succeed.
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l == other, nil
}

// Offset returns a new Location moved by the given deltas in degrees.
// The result is validated like any other Location.
//
// Example:
//
//	home, _ := kernel.NewLocation(51.5001, -0.1239)
//	start, err := home.Offset(0.01, -0.02)
func (l Location) Offset(deltaLatitude float64, deltaLongitude float64) (Location, error) {
	if err := l.Validate(); err != nil {
		return Location{}, err
	}

	return NewLocation(l.latitude+deltaLatitude, l.longitude+deltaLongitude)
}

// Shift is Offset for callers that must stay on the map: latitude stops at the
// poles and longitude wraps across the antimeridian.
func (l Location) Shift(deltaLatitude float64, deltaLongitude float64) (Location, error) {
	if err := l.Validate(); err != nil {
		return Location{}, err
	}

	return NewLocation(
		clamp(l.latitude+deltaLatitude, LatitudeMin, LatitudeMax),
		wrapLongitude(l.longitude+deltaLongitude),
	)
}

// Interpolate returns the point at fraction of the straight line from l to target.
// The fraction is clamped to [0, 1]: 0 yields l and 1 yields target.
// Longitude takes the shorter way, crossing the antimeridian when that is closer.
//
// Example:
//
//	start, _ := kernel.NewLocation(51.51, -0.12)
//	end, _ := kernel.NewLocation(51.50, -0.12)
//	halfway, _ := start.Interpolate(end, 0.5) // Location(51.505000,-0.120000)
func (l Location) Interpolate(target Location, fraction float64) (Location, error) {
	if err := errors.Join(l.Validate(), target.Validate()); err != nil {
		return Location{}, err
	}

	fraction = clamp(fraction, 0, 1)

	deltaLongitude := target.longitude - l.longitude
	switch {
	case deltaLongitude > LongitudeMax:
		deltaLongitude -= 360
	case deltaLongitude < LongitudeMin:
		deltaLongitude += 360
	}

	return NewLocation(
		l.latitude+(target.latitude-l.latitude)*fraction,
		wrapLongitude(l.longitude+deltaLongitude*fraction),
	)
}

// setLatitude sets the latitude with validation.
// Pointer receiver so the constructor can validate while building the value.
func (l *Location) setLatitude(latitude float64) error {
	if latitude < LatitudeMin || latitude > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("latitude", latitude, LatitudeMin, LatitudeMax)
	}

	l.latitude = latitude
	return nil
}

func (l *Location) setLongitude(longitude float64) error {
	if longitude < LongitudeMin || longitude > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("longitude", longitude, LongitudeMin, LongitudeMax)
	}

	l.longitude = longitude
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// wrapLongitude maps any longitude into [-180, 180].
func wrapLongitude(longitude float64) float64 {
	if longitude >= LongitudeMin && longitude <= LongitudeMax {
		return longitude
	}
	wrapped := math.Mod(longitude-LongitudeMin, 360)
	if wrapped < 0 {
		wrapped += 360
	}
	return wrapped + LongitudeMin
}
