package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pizzatracker/internal/core/domain/model/kernel"
	"pizzatracker/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrDeliveryLocationMissing is returned when an order without a delivery coordinate
	// is asked for position-dependent information.
	ErrDeliveryLocationMissing = errs.NewValueIsRequiredError("delivery location")
)

// Order is a placed order as seen by the tracking core.
// Orders are immutable once placed; the tracker only reads them.
type Order struct {
	// id is the store-assigned identifier (0 before the order is persisted)
	id int64

	// userID is the owning user's identifier
	userID string

	// createdAt is the placement time that anchors the delivery simulation
	createdAt time.Time

	// address is the human readable delivery address
	address Address

	// deliveryLocation is the delivery coordinate; nil only for legacy rows
	deliveryLocation *kernel.Location

	// items are the ordered line items
	items []*LineItem

	// isConstructed ensures the order was created via a constructor
	isConstructed bool
}

// NewOrder creates a new order ready to be persisted.
// The delivery location is mandatory for new orders.
//
// Example:
//
//	loc, _ := kernel.NewLocation(51.5001, -0.1239)
//	o, err := order.NewOrder("alice", time.Now(), addr, loc, items)
func NewOrder(
	userID string,
	createdAt time.Time,
	address Address,
	deliveryLocation kernel.Location,
	items []*LineItem,
) (*Order, error) {
	o := &Order{
		isConstructed: true,
	}

	if err := errors.Join(
		o.setUserID(userID),
		o.setCreatedAt(createdAt),
		o.setAddress(address),
		o.setDeliveryLocation(&deliveryLocation),
		o.setItems(items),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder rebuilds an order loaded from storage.
// Unlike NewOrder it tolerates a missing delivery location so that such rows
// surface as invalid orders at tracking time instead of failing every listing.
func RestoreOrder(
	id int64,
	userID string,
	createdAt time.Time,
	address Address,
	deliveryLocation *kernel.Location,
	items []*LineItem,
) (*Order, error) {
	o := &Order{
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setUserID(userID),
		o.setCreatedAt(createdAt),
		o.setAddress(address),
		o.setItems(items),
	); err != nil {
		return nil, err
	}

	if deliveryLocation != nil {
		if err := o.setDeliveryLocation(deliveryLocation); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// WithID returns a copy of the order carrying the store-assigned identifier.
func (o *Order) WithID(id int64) (*Order, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	restored := *o
	if err := restored.setID(id); err != nil {
		return nil, err
	}
	return &restored, nil
}

// Validate checks that the order was constructed and that its line items are intact.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	for i, item := range o.items {
		if err := item.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("items[%d]", i), err)
		}
	}

	return nil
}

// ID returns the order identifier.
func (o *Order) ID() int64 {
	return o.id
}

// UserID returns the owning user's identifier.
func (o *Order) UserID() string {
	return o.userID
}

// CreatedAt returns the placement time.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// Address returns the delivery address.
func (o *Order) Address() Address {
	return o.address
}

// DeliveryLocation returns the delivery coordinate or ErrDeliveryLocationMissing.
func (o *Order) DeliveryLocation() (kernel.Location, error) {
	if o.deliveryLocation == nil {
		return kernel.Location{}, ErrDeliveryLocationMissing
	}
	return *o.deliveryLocation, nil
}

// HasDeliveryLocation reports whether the order carries a delivery coordinate.
func (o *Order) HasDeliveryLocation() bool {
	return o.deliveryLocation != nil
}

// Items returns a copy of the order's line items.
func (o *Order) Items() []*LineItem {
	items := make([]*LineItem, len(o.items))
	copy(items, o.items)
	return items
}

// TotalPrice returns the sum of all line item prices.
func (o *Order) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.items {
		total = total.Add(item.Price())
	}
	return total
}

// IsOwnedBy reports whether userID owns the order.
func (o *Order) IsOwnedBy(userID string) bool {
	return o.userID == strings.TrimSpace(userID)
}

func (o *Order) setID(id int64) error {
	if id <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("id", fmt.Errorf("%d is not greater than 0", id))
	}
	o.id = id
	return nil
}

func (o *Order) setUserID(userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errs.NewValueIsRequiredError("userID")
	}
	o.userID = userID
	return nil
}

func (o *Order) setCreatedAt(createdAt time.Time) error {
	if createdAt.IsZero() {
		return errs.NewValueIsRequiredError("createdAt")
	}
	o.createdAt = createdAt
	return nil
}

func (o *Order) setAddress(address Address) error {
	if err := address.Validate(); err != nil {
		return err
	}
	o.address = address
	return nil
}

func (o *Order) setDeliveryLocation(location *kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	loc := *location
	o.deliveryLocation = &loc
	return nil
}

func (o *Order) setItems(items []*LineItem) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	o.items = make([]*LineItem, len(items))
	copy(o.items, items)
	return nil
}
