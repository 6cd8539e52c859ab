// Package servers holds the HTTP API contract: request and error bodies, the
// ServerInterface implemented by the HTTP adapter, parameter binding and the
// embedded OpenAPI document.
package servers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// Error defines model for Error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Location defines model for Location.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Address defines model for Address.
type Address struct {
	Name       string  `json:"name"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	Region     *string `json:"region,omitempty"`
	PostalCode string  `json:"postalCode"`
}

// Topping defines model for Topping.
type Topping struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// NewLineItem defines model for NewLineItem.
type NewLineItem struct {
	Name      string     `json:"name"`
	Size      *int       `json:"size,omitempty"`
	BasePrice string     `json:"basePrice"`
	Toppings  *[]Topping `json:"toppings,omitempty"`
}

// NewOrder defines model for NewOrder.
type NewOrder struct {
	Address  Address       `json:"address"`
	Location *Location     `json:"location,omitempty"`
	Items    []NewLineItem `json:"items"`
}

// OrderCreated defines model for OrderCreated.
type OrderCreated struct {
	OrderId int64 `json:"orderId"` //nolint:revive // matches the schema
}

// PushSubscriptionKeys defines model for the keys of PushSubscription.
type PushSubscriptionKeys struct {
	Auth   string `json:"auth"`
	P256dh string `json:"p256dh"`
}

// PushSubscription is the JSON form of a browser PushSubscription.
type PushSubscription struct {
	Endpoint string               `json:"endpoint"`
	Keys     PushSubscriptionKeys `json:"keys"`
}

// OrderId defines the orderId path parameter.
type OrderId = int64 //nolint:revive // matches the schema

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /health)
	Health(ctx echo.Context) error
	// Orders of the calling user, newest first
	// (GET /api/v1/orders)
	ListOrders(ctx echo.Context) error
	// Place an order and start tracking it
	// (POST /api/v1/orders)
	PlaceOrder(ctx echo.Context) error
	// Current status of one order
	// (GET /api/v1/orders/{orderId})
	GetOrder(ctx echo.Context, orderId OrderId) error
	// Register the browser push subscription of the calling user
	// (PUT /api/v1/notifications/subscribe)
	SubscribeNotifications(ctx echo.Context) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) Health(ctx echo.Context) error {
	return w.Handler.Health(ctx)
}

func (w *ServerInterfaceWrapper) ListOrders(ctx echo.Context) error {
	return w.Handler.ListOrders(ctx)
}

func (w *ServerInterfaceWrapper) PlaceOrder(ctx echo.Context) error {
	return w.Handler.PlaceOrder(ctx)
}

// GetOrder binds the orderId path parameter before calling the handler.
func (w *ServerInterfaceWrapper) GetOrder(ctx echo.Context) error {
	var orderId OrderId //nolint:revive // matches the schema

	err := runtime.BindStyledParameterWithOptions("simple", "orderId", ctx.Param("orderId"), &orderId,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter orderId: %s", err))
	}

	return w.Handler.GetOrder(ctx, orderId)
}

func (w *ServerInterfaceWrapper) SubscribeNotifications(ctx echo.Context) error {
	return w.Handler.SubscribeNotifications(ctx)
}

// EchoRouter is satisfied by *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// RegisterHandlersWithBaseURL registers the routes under baseURL. The health
// route is public; the API routes take the given middlewares.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string, m ...echo.MiddlewareFunc) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	router.GET(baseURL+"/health", wrapper.Health)
	router.GET(baseURL+"/api/v1/orders", wrapper.ListOrders, m...)
	router.POST(baseURL+"/api/v1/orders", wrapper.PlaceOrder, m...)
	router.GET(baseURL+"/api/v1/orders/:orderId", wrapper.GetOrder, m...)
	router.PUT(baseURL+"/api/v1/notifications/subscribe", wrapper.SubscribeNotifications, m...)
}
