// Package queries contains read-only operations. Query handlers never open a
// transaction; they read through OrderReader and derive tracking status on the fly.
package queries

import (
	"context"

	"pizzatracker/internal/core/domain/model/order"
)

// OrderReader is the read side of the order store used by query handlers.
type OrderReader interface {
	Get(ctx context.Context, id int64) (*order.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*order.Order, error)
}
