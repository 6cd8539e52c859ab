package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"pizzatracker/internal/adapters/in/ws"
	"pizzatracker/internal/api/servers"
	"pizzatracker/internal/core/application/usecases/commands"
	"pizzatracker/internal/core/application/usecases/queries"
	"pizzatracker/internal/core/domain/model/kernel"
	"pizzatracker/internal/core/domain/model/order"
	"pizzatracker/internal/core/domain/model/tracking"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type (
	OrderPlacer interface {
		Handle(ctx context.Context, cmd commands.PlaceOrderCommand) (int64, error)
	}
	NotificationSubscriber interface {
		Handle(ctx context.Context, cmd commands.SubscribeNotificationsCommand) error
	}
	OrderStatusReader interface {
		Handle(ctx context.Context, query queries.GetOrderWithStatusQuery) (tracking.Snapshot, error)
	}
	UserOrdersReader interface {
		Handle(ctx context.Context, query queries.GetUserOrdersQuery) ([]queries.GetUserOrdersQueryResponse, error)
	}
)

// OrderSummary is one row of the "my orders" list.
type OrderSummary struct {
	ws.OrderView
	Status string `json:"status"`
}

// Server implements the ServerInterface for handling HTTP requests.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	placeOrderHandler             OrderPlacer
	subscribeNotificationsHandler NotificationSubscriber

	// Query handlers
	getOrderWithStatusHandler OrderStatusReader
	getUserOrdersHandler      UserOrdersReader

	logger *slog.Logger
}

var _ servers.ServerInterface = (*Server)(nil)

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	placeOrderHandler OrderPlacer,
	subscribeNotificationsHandler NotificationSubscriber,
	getOrderWithStatusHandler OrderStatusReader,
	getUserOrdersHandler UserOrdersReader,
	logger *slog.Logger,
) *Server {
	return &Server{
		placeOrderHandler:             placeOrderHandler,
		subscribeNotificationsHandler: subscribeNotificationsHandler,
		getOrderWithStatusHandler:     getOrderWithStatusHandler,
		getUserOrdersHandler:          getUserOrdersHandler,
		logger:                        logger.With("component", "http"),
	}
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Healthy")
}

// ListOrders handles GET /api/v1/orders - the caller's orders, newest first.
func (s *Server) ListOrders(ctx echo.Context) error {
	query, err := queries.NewGetUserOrdersQuery(userID(ctx))
	if err != nil {
		return s.writeError(ctx, err)
	}

	rows, err := s.getUserOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.writeError(ctx, err)
	}

	response := make([]OrderSummary, 0, len(rows))
	for _, row := range rows {
		response = append(response, OrderSummary{
			OrderView: ws.NewOrderView(row.Order),
			Status:    row.State.String(),
		})
	}

	return ctx.JSON(http.StatusOK, response)
}

// PlaceOrder handles POST /api/v1/orders - places an order and queues it for tracking.
func (s *Server) PlaceOrder(ctx echo.Context) error {
	var body servers.NewOrder
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, servers.Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	cmd, err := newPlaceOrderCommand(userID(ctx), body)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, servers.Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order data: " + err.Error(),
		})
	}

	orderID, err := s.placeOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		if orderID == 0 {
			return s.writeError(ctx, err)
		}
		// Stored but not queued; the recovery job starts tracking it.
		s.logger.WarnContext(ctx.Request().Context(), "Order placed without tracking", "order_id", orderID, "error", err)
	}

	return ctx.JSON(http.StatusCreated, servers.OrderCreated{OrderId: orderID})
}

// GetOrder handles GET /api/v1/orders/{orderId} - the order's current status.
func (s *Server) GetOrder(ctx echo.Context, orderID servers.OrderId) error {
	query, err := queries.NewGetOrderWithStatusQuery(orderID, userID(ctx))
	if err != nil {
		return s.writeError(ctx, err)
	}

	snapshot, err := s.getOrderWithStatusHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, ws.NewStatusView(snapshot))
}

// SubscribeNotifications handles PUT /api/v1/notifications/subscribe.
func (s *Server) SubscribeNotifications(ctx echo.Context) error {
	var body servers.PushSubscription
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, servers.Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	cmd, err := commands.NewSubscribeNotificationsCommand(userID(ctx), body.Endpoint, body.Keys.P256dh, body.Keys.Auth)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, servers.Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid subscription: " + err.Error(),
		})
	}

	if err = s.subscribeNotificationsHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

func newPlaceOrderCommand(userID string, body servers.NewOrder) (commands.PlaceOrderCommand, error) {
	var location *kernel.Location
	if body.Location != nil {
		loc, err := kernel.NewLocation(body.Location.Latitude, body.Location.Longitude)
		if err != nil {
			return commands.PlaceOrderCommand{}, err
		}
		location = &loc
	}

	items := make([]commands.PlaceOrderItem, 0, len(body.Items))
	for i, item := range body.Items {
		basePrice, err := decimal.NewFromString(item.BasePrice)
		if err != nil {
			return commands.PlaceOrderCommand{}, fmt.Errorf("items[%d].basePrice: %w", i, err)
		}

		var toppings []order.Topping
		if item.Toppings != nil {
			for j, topping := range *item.Toppings {
				price, priceErr := decimal.NewFromString(topping.Price)
				if priceErr != nil {
					return commands.PlaceOrderCommand{}, fmt.Errorf("items[%d].toppings[%d].price: %w", i, j, priceErr)
				}
				toppings = append(toppings, order.Topping{Name: topping.Name, Price: price})
			}
		}

		size := 0
		if item.Size != nil {
			size = *item.Size
		}

		items = append(items, commands.PlaceOrderItem{
			Name:      item.Name,
			Size:      size,
			BasePrice: basePrice,
			Toppings:  toppings,
		})
	}

	return commands.NewPlaceOrderCommand(userID, order.Address{
		Name:       body.Address.Name,
		Line1:      body.Address.Line1,
		Line2:      deref(body.Address.Line2),
		City:       body.Address.City,
		Region:     deref(body.Address.Region),
		PostalCode: body.Address.PostalCode,
	}, location, items)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
