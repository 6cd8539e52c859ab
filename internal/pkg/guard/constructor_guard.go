// Package guard provides the ConstructorGuard used by value objects, commands and
// queries to tell constructor-built values apart from zero values.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is given.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded in types that must only be built through their
// constructor. Its zero value fails validation.
//
// Example:
//
//	type Marker struct {
//	    label string
//	    guard guard.ConstructorGuard
//	}
//
//	func NewMarker(label string) Marker {
//	    return Marker{label: label, guard: guard.NewConstructorGuard()}
//	}
//
//	func (m Marker) Validate() error {
//	    return m.guard.Validate(ErrMarkerIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard that marks its owner as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil for constructed owners and validationError otherwise.
// A nil validationError is replaced with ErrDefaultConstructorGuard.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
