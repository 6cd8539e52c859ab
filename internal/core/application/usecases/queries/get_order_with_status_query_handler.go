package queries

import (
	"context"
	"time"

	"pizzatracker/internal/core/domain/model/tracking"
	"pizzatracker/internal/core/domain/services"
	"pizzatracker/internal/pkg/errs"
)

// GetOrderWithStatusQueryHandler loads an order and computes its snapshot at the
// current time. It serves the order page and the initial frame a websocket client
// receives when it starts tracking, so delivered orders are reported even after
// their tracker has finished.
type GetOrderWithStatusQueryHandler struct {
	orders   OrderReader
	computer services.StatusComputer
	now      func() time.Time
}

// NewGetOrderWithStatusQueryHandler defaults now to time.Now when nil.
func NewGetOrderWithStatusQueryHandler(
	orders OrderReader,
	computer services.StatusComputer,
	now func() time.Time,
) GetOrderWithStatusQueryHandler {
	if now == nil {
		now = time.Now
	}
	return GetOrderWithStatusQueryHandler{
		orders:   orders,
		computer: computer,
		now:      now,
	}
}

// Handle returns the snapshot of the requested order.
// An order owned by another user is reported exactly like a missing one.
// Orders that cannot be placed on the timeline yield services.ErrInvalidOrder.
func (h GetOrderWithStatusQueryHandler) Handle(
	ctx context.Context,
	query GetOrderWithStatusQuery,
) (tracking.Snapshot, error) {
	if err := query.Validate(); err != nil {
		return tracking.Snapshot{}, err
	}

	o, err := h.orders.Get(ctx, query.OrderID())
	if err != nil {
		return tracking.Snapshot{}, err
	}

	if !o.IsOwnedBy(query.UserID()) {
		return tracking.Snapshot{}, errs.NewObjectNotFoundError("orderID", query.OrderID())
	}

	return h.computer.Compute(o, h.now())
}
