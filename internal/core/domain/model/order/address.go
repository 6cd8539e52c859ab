package order

import (
	"errors"
	"strings"

	"pizzatracker/internal/pkg/errs"
)

// Address is the human readable delivery address of an order.
// Line2 and Region are optional.
type Address struct {
	Name       string
	Line1      string
	Line2      string
	City       string
	Region     string
	PostalCode string
}

// Validate checks the mandatory address fields.
func (a Address) Validate() error {
	return errors.Join(
		required("address.name", a.Name),
		required("address.line1", a.Line1),
		required("address.city", a.City),
		required("address.postalCode", a.PostalCode),
	)
}

func required(name string, value string) error {
	if strings.TrimSpace(value) == "" {
		return errs.NewValueIsRequiredError(name)
	}
	return nil
}
