// Package ports defines the contracts between the tracking core and its adapters:
// persistence, the tracking queue, status broadcasting and push delivery.
package ports

import (
	"context"
	"time"

	"pizzatracker/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for placed orders.
// Orders are immutable after placement, so there is no Update.
type OrderRepository interface {
	// Add persists a new order with its line items and returns it carrying
	// the store-assigned identifier.
	Add(ctx context.Context, aggregate *order.Order) (*order.Order, error)

	// Get loads an order with its line items.
	// Returns errs.ObjectNotFoundError when no order has the id.
	Get(ctx context.Context, id int64) (*order.Order, error)

	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]*order.Order, error)

	// ListPlacedSince returns orders placed at or after since, oldest first.
	// Used to resume tracking of orders that are still on their delivery timeline.
	ListPlacedSince(ctx context.Context, since time.Time) ([]*order.Order, error)
}
