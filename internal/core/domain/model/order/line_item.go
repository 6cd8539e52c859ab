package order

import (
	"errors"
	"fmt"
	"strings"

	"pizzatracker/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

const (
	// DefaultSize is the reference pizza size in inches; base prices are quoted for it.
	DefaultSize = 12
	// MinimumSize is the smallest pizza size on offer.
	MinimumSize = 9
	// MaximumSize is the largest pizza size on offer.
	MaximumSize = 17
)

// ErrLineItemIsNotConstructed is returned for zero-value or nil line items.
var ErrLineItemIsNotConstructed = errors.New("LineItem must be created via NewLineItem constructor")

// Topping is an extra added to a line item at a fixed price.
type Topping struct {
	Name  string
	Price decimal.Decimal
}

// LineItem is one pizza of an order.
type LineItem struct {
	name      string
	size      int
	basePrice decimal.Decimal
	toppings  []Topping

	isConstructed bool
}

// NewLineItem creates a validated line item.
//
// Example:
//
//	item, err := order.NewLineItem("Margherita", 14, decimal.RequireFromString("9.99"),
//	    []order.Topping{{Name: "Basil", Price: decimal.RequireFromString("0.50")}})
func NewLineItem(name string, size int, basePrice decimal.Decimal, toppings []Topping) (*LineItem, error) {
	item := &LineItem{
		isConstructed: true,
	}

	if err := errors.Join(
		item.setName(name),
		item.setSize(size),
		item.setBasePrice(basePrice),
		item.setToppings(toppings),
	); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks that the line item was constructed and still holds a valid size.
func (i *LineItem) Validate() error {
	if i == nil || !i.isConstructed {
		return ErrLineItemIsNotConstructed
	}
	if i.size < MinimumSize || i.size > MaximumSize {
		return errs.NewValueIsOutOfRangeError("size", i.size, MinimumSize, MaximumSize)
	}
	return nil
}

// Name returns the pizza name.
func (i *LineItem) Name() string {
	return i.name
}

// Size returns the pizza size in inches.
func (i *LineItem) Size() int {
	return i.size
}

// BasePrice returns the price quoted for a DefaultSize pizza.
func (i *LineItem) BasePrice() decimal.Decimal {
	return i.basePrice
}

// Toppings returns a copy of the toppings.
func (i *LineItem) Toppings() []Topping {
	toppings := make([]Topping, len(i.toppings))
	copy(toppings, i.toppings)
	return toppings
}

// Price returns the base price scaled by size plus the toppings, rounded to cents.
func (i *LineItem) Price() decimal.Decimal {
	price := i.basePrice.
		Mul(decimal.NewFromInt(int64(i.size))).
		Div(decimal.NewFromInt(DefaultSize))
	for _, topping := range i.toppings {
		price = price.Add(topping.Price)
	}
	return price.Round(2)
}

func (i *LineItem) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	i.name = name
	return nil
}

func (i *LineItem) setSize(size int) error {
	if size < MinimumSize || size > MaximumSize {
		return errs.NewValueIsOutOfRangeError("size", size, MinimumSize, MaximumSize)
	}
	i.size = size
	return nil
}

func (i *LineItem) setBasePrice(basePrice decimal.Decimal) error {
	if basePrice.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("basePrice", fmt.Errorf("%s is negative", basePrice))
	}
	i.basePrice = basePrice
	return nil
}

func (i *LineItem) setToppings(toppings []Topping) error {
	var err error
	for idx, topping := range toppings {
		if strings.TrimSpace(topping.Name) == "" {
			err = errors.Join(err, errs.NewValueIsRequiredError(fmt.Sprintf("toppings[%d].name", idx)))
		}
		if topping.Price.IsNegative() {
			err = errors.Join(err, errs.NewValueIsInvalidError(fmt.Sprintf("toppings[%d].price", idx)))
		}
	}
	if err != nil {
		return err
	}

	i.toppings = make([]Topping, len(toppings))
	copy(i.toppings, toppings)
	return nil
}
