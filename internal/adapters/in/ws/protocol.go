package ws

import (
	"encoding/json"
	"log/slog"
	"time"

	"pizzatracker/internal/core/domain/model/order"
	"pizzatracker/internal/core/domain/model/tracking"
)

// Frame types exchanged over the tracking socket.
const (
	// MethodStartTracking subscribes the connection to an order's group.
	MethodStartTracking = "startTracking"
	// MethodStopTracking removes the connection from an order's group.
	MethodStopTracking = "stopTracking"

	// EventOrderStatusChanged carries a snapshot of a tracked order.
	EventOrderStatusChanged = "orderStatusChanged"
	// EventAck confirms a start/stop request.
	EventAck = "ack"
	// EventError reports a rejected frame.
	EventError = "error"
)

// Error codes carried by EventError frames.
const (
	CodeInvalidArgument    = "INVALID_ARGUMENT"
	CodeNotFound           = "NOT_FOUND"
	CodeFailedPrecondition = "FAILED_PRECONDITION"
	CodeUnavailable        = "UNAVAILABLE"
	CodeResourceExhausted  = "RESOURCE_EXHAUSTED"
)

// Frame is the envelope of every message in both directions.
type Frame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// TrackingPayload is the body of startTracking and stopTracking frames.
type TrackingPayload struct {
	OrderID int64 `json:"orderId"`
}

// AckPayload confirms a request and names the group it affected.
type AckPayload struct {
	OrderID int64  `json:"orderId"`
	GroupID string `json:"groupId"`
}

// ErrorPayload describes why a frame was rejected.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MarkerView is a map marker as rendered by clients.
type MarkerView struct {
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	ShowPopup   bool    `json:"showPopup"`
}

// ToppingView is a topping with its price as a decimal string.
type ToppingView struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// LineItemView is a priced pizza.
type LineItemView struct {
	Name     string        `json:"name"`
	Size     int           `json:"size"`
	Price    string        `json:"price"`
	Toppings []ToppingView `json:"toppings"`
}

// AddressView is the delivery address.
type AddressView struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postalCode"`
}

// OrderView is an order as shown on the tracking and "my orders" pages.
type OrderView struct {
	ID         int64          `json:"id"`
	UserID     string         `json:"userId"`
	CreatedAt  time.Time      `json:"createdAt"`
	Address    AddressView    `json:"address"`
	Items      []LineItemView `json:"items"`
	TotalPrice string         `json:"totalPrice"`
}

// StatusView is the client representation of a tracking snapshot.
type StatusView struct {
	OrderID int64        `json:"orderId"`
	GroupID string       `json:"groupId"`
	Status  string       `json:"status"`
	Markers []MarkerView `json:"markers"`
	Order   OrderView    `json:"order"`
}

// NewOrderView maps an order to its client representation.
func NewOrderView(o *order.Order) OrderView {
	items := make([]LineItemView, 0, len(o.Items()))
	for _, item := range o.Items() {
		toppings := make([]ToppingView, 0, len(item.Toppings()))
		for _, topping := range item.Toppings() {
			toppings = append(toppings, ToppingView{Name: topping.Name, Price: topping.Price.StringFixed(2)})
		}
		items = append(items, LineItemView{
			Name:     item.Name(),
			Size:     item.Size(),
			Price:    item.Price().StringFixed(2),
			Toppings: toppings,
		})
	}

	address := o.Address()
	return OrderView{
		ID:        o.ID(),
		UserID:    o.UserID(),
		CreatedAt: o.CreatedAt(),
		Address: AddressView{
			Name:       address.Name,
			Line1:      address.Line1,
			Line2:      address.Line2,
			City:       address.City,
			Region:     address.Region,
			PostalCode: address.PostalCode,
		},
		Items:      items,
		TotalPrice: o.TotalPrice().StringFixed(2),
	}
}

// NewStatusView maps a snapshot to its client representation.
func NewStatusView(snapshot tracking.Snapshot) StatusView {
	markers := make([]MarkerView, 0, len(snapshot.Markers()))
	for _, m := range snapshot.Markers() {
		markers = append(markers, MarkerView{
			Description: m.Description,
			Latitude:    m.Latitude,
			Longitude:   m.Longitude,
			ShowPopup:   m.ShowPopup,
		})
	}

	return StatusView{
		OrderID: snapshot.Order().ID(),
		GroupID: snapshot.GroupID().String(),
		Status:  snapshot.State().String(),
		Markers: markers,
		Order:   NewOrderView(snapshot.Order()),
	}
}

func mustJSON(logger *slog.Logger, v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Error("Failed to marshal websocket frame payload", "error", err)
		return nil
	}
	return b
}
