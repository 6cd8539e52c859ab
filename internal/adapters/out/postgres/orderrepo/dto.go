// Package orderrepo persists orders and their line items with GORM.
package orderrepo

import (
	"fmt"
	"time"

	"pizzatracker/internal/core/domain/model/kernel"
	"pizzatracker/internal/core/domain/model/order"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// OrderDTO is the row of the orders table. The serial id is assigned by the
// database on insert. A NULL coordinate marks a legacy row that cannot be tracked.
type OrderDTO struct {
	ID        int64         `gorm:"primaryKey;autoIncrement"`
	UserID    string        `gorm:"type:text;not null;index:idx_orders_user_created,priority:1"`
	CreatedAt time.Time     `gorm:"not null;index:idx_orders_user_created,priority:2;index:idx_orders_created"`
	Address   AddressDTO    `gorm:"embedded;embeddedPrefix:address_"`
	Latitude  *float64      `gorm:"column:location_latitude"`
	Longitude *float64      `gorm:"column:location_longitude"`
	Items     []LineItemDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// AddressDTO is embedded into the orders table with the address_ prefix.
type AddressDTO struct {
	Name       string `gorm:"type:text"`
	Line1      string `gorm:"type:text"`
	Line2      string `gorm:"type:text"`
	City       string `gorm:"type:text"`
	Region     string `gorm:"type:text"`
	PostalCode string `gorm:"type:text"`
}

// LineItemDTO is one pizza of an order. Toppings are stored as two parallel
// arrays so an order loads with a single preload.
type LineItemDTO struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	OrderID       int64           `gorm:"not null;index"`
	Position      int             `gorm:"not null"`
	Name          string          `gorm:"type:text;not null"`
	Size          int             `gorm:"type:smallint;not null"`
	BasePrice     decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	ToppingNames  pq.StringArray  `gorm:"type:text[]"`
	ToppingPrices pq.StringArray  `gorm:"type:numeric(10,2)[]"`
}

func (LineItemDTO) TableName() string {
	return "order_items"
}

func fromDomain(o *order.Order) OrderDTO {
	address := o.Address()
	dto := OrderDTO{
		ID:        o.ID(),
		UserID:    o.UserID(),
		CreatedAt: o.CreatedAt(),
		Address: AddressDTO{
			Name:       address.Name,
			Line1:      address.Line1,
			Line2:      address.Line2,
			City:       address.City,
			Region:     address.Region,
			PostalCode: address.PostalCode,
		},
	}

	if loc, err := o.DeliveryLocation(); err == nil {
		lat, lon := loc.Latitude(), loc.Longitude()
		dto.Latitude = &lat
		dto.Longitude = &lon
	}

	for i, item := range o.Items() {
		names := make(pq.StringArray, 0, len(item.Toppings()))
		prices := make(pq.StringArray, 0, len(item.Toppings()))
		for _, topping := range item.Toppings() {
			names = append(names, topping.Name)
			prices = append(prices, topping.Price.String())
		}
		dto.Items = append(dto.Items, LineItemDTO{
			Position:      i,
			Name:          item.Name(),
			Size:          item.Size(),
			BasePrice:     item.BasePrice(),
			ToppingNames:  names,
			ToppingPrices: prices,
		})
	}

	return dto
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	var location *kernel.Location
	if dto.Latitude != nil && dto.Longitude != nil {
		loc, err := kernel.NewLocation(*dto.Latitude, *dto.Longitude)
		if err != nil {
			return nil, err
		}
		location = &loc
	}

	items := make([]*order.LineItem, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, err := lineItemToDomain(itemDTO)
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", dto.ID, err)
		}
		items = append(items, item)
	}

	return order.RestoreOrder(
		dto.ID,
		dto.UserID,
		dto.CreatedAt.UTC(),
		order.Address{
			Name:       dto.Address.Name,
			Line1:      dto.Address.Line1,
			Line2:      dto.Address.Line2,
			City:       dto.Address.City,
			Region:     dto.Address.Region,
			PostalCode: dto.Address.PostalCode,
		},
		location,
		items,
	)
}

func lineItemToDomain(dto LineItemDTO) (*order.LineItem, error) {
	if len(dto.ToppingNames) != len(dto.ToppingPrices) {
		return nil, fmt.Errorf("line item %d: %d topping names for %d prices",
			dto.ID, len(dto.ToppingNames), len(dto.ToppingPrices))
	}

	toppings := make([]order.Topping, 0, len(dto.ToppingNames))
	for i, name := range dto.ToppingNames {
		price, err := decimal.NewFromString(dto.ToppingPrices[i])
		if err != nil {
			return nil, fmt.Errorf("line item %d topping %q: %w", dto.ID, name, err)
		}
		toppings = append(toppings, order.Topping{Name: name, Price: price})
	}

	return order.NewLineItem(dto.Name, dto.Size, dto.BasePrice, toppings)
}
