// Package errs provides standardized error types for the tracking service.
//
// The package includes several error types for common error scenarios:
//   - ValueIsRequiredError: a required value is missing
//   - ValueIsInvalidError: a value failed validation
//   - ValueIsOutOfRangeError: a value lies outside of its allowed bounds
//   - ObjectNotFoundError: an order or subscription could not be found
//
// Each error type follows the same pattern: a sentinel error variable, a struct
// carrying the details, constructors with and without a cause, Error() for
// formatting and Unwrap() returning the sentinel so callers can use errors.Is.
package errs
