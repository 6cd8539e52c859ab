package commands

import (
	"errors"
	"fmt"
	"strings"

	"pizzatracker/internal/core/domain/model/kernel"
	"pizzatracker/internal/core/domain/model/order"
	"pizzatracker/internal/pkg/errs"
	"pizzatracker/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrPlaceOrderCommandIsNotConstructed = errors.New(
		"PlaceOrderCommand must be created via NewPlaceOrderCommand constructor",
	)
	ErrItemsAreRequired = errs.NewValueIsRequiredError("items")
)

// PlaceOrderItem is one pizza as submitted by the customer.
// A zero Size selects order.DefaultSize.
type PlaceOrderItem struct {
	Name      string
	Size      int
	BasePrice decimal.Decimal
	Toppings  []order.Topping
}

// PlaceOrderCommand represents a customer placing a new order.
//
// Example:
//
//	cmd, err := NewPlaceOrderCommand("alice", addr, nil, []PlaceOrderItem{
//	    {Name: "Margherita", BasePrice: decimal.RequireFromString("9.99")},
//	})
//	if err != nil {
//	    return fmt.Errorf("invalid order: %w", err)
//	}
//
//	orderID, err := handler.Handle(ctx, cmd)
type PlaceOrderCommand struct { //nolint:recvcheck //using for validation
	userID   string
	address  order.Address
	location *kernel.Location
	items    []*order.LineItem

	guard guard.ConstructorGuard
}

// NewPlaceOrderCommand validates the order data. The location is optional;
// the handler substitutes the dispatch area coordinate when it is nil.
func NewPlaceOrderCommand(
	userID string,
	address order.Address,
	location *kernel.Location,
	items []PlaceOrderItem,
) (PlaceOrderCommand, error) {
	cmd := PlaceOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setUserID(userID),
		cmd.setAddress(address),
		cmd.setLocation(location),
		cmd.setItems(items),
	); err != nil {
		return PlaceOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c PlaceOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlaceOrderCommandIsNotConstructed)
}

func (c PlaceOrderCommand) UserID() string {
	return c.userID
}

func (c PlaceOrderCommand) Address() order.Address {
	return c.address
}

// Location returns the requested delivery coordinate, or nil if none was given.
func (c PlaceOrderCommand) Location() *kernel.Location {
	return c.location
}

func (c PlaceOrderCommand) Items() []*order.LineItem {
	items := make([]*order.LineItem, len(c.items))
	copy(items, c.items)
	return items
}

func (c *PlaceOrderCommand) setUserID(userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errs.NewValueIsRequiredError("userID")
	}

	c.userID = userID
	return nil
}

func (c *PlaceOrderCommand) setAddress(address order.Address) error {
	if err := address.Validate(); err != nil {
		return err
	}

	c.address = address
	return nil
}

func (c *PlaceOrderCommand) setLocation(location *kernel.Location) error {
	if location == nil {
		return nil
	}
	if err := location.Validate(); err != nil {
		return err
	}

	loc := *location
	c.location = &loc
	return nil
}

func (c *PlaceOrderCommand) setItems(items []PlaceOrderItem) error {
	if len(items) == 0 {
		return ErrItemsAreRequired
	}

	lineItems := make([]*order.LineItem, 0, len(items))
	for i, item := range items {
		size := item.Size
		if size == 0 {
			size = order.DefaultSize
		}

		lineItem, err := order.NewLineItem(item.Name, size, item.BasePrice, item.Toppings)
		if err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
		lineItems = append(lineItems, lineItem)
	}

	c.items = lineItems
	return nil
}
