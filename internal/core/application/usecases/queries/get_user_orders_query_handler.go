package queries

import (
	"context"
	"errors"
	"time"

	"pizzatracker/internal/core/domain/model/tracking"
	"pizzatracker/internal/core/domain/services"
)

// GetUserOrdersQueryHandler lists a user's orders, newest first.
type GetUserOrdersQueryHandler struct {
	orders   OrderReader
	computer services.StatusComputer
	now      func() time.Time
}

// NewGetUserOrdersQueryHandler defaults now to time.Now when nil.
func NewGetUserOrdersQueryHandler(
	orders OrderReader,
	computer services.StatusComputer,
	now func() time.Time,
) GetUserOrdersQueryHandler {
	if now == nil {
		now = time.Now
	}
	return GetUserOrdersQueryHandler{
		orders:   orders,
		computer: computer,
		now:      now,
	}
}

// Handle returns every order of the user with its state at the current time.
// One invalid order does not hide the others: it is listed with tracking.Unknown.
func (h GetUserOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetUserOrdersQuery,
) ([]GetUserOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders, err := h.orders.ListByUser(ctx, query.UserID())
	if err != nil {
		return nil, err
	}

	now := h.now()
	result := make([]GetUserOrdersQueryResponse, 0, len(orders))
	for _, o := range orders {
		row := GetUserOrdersQueryResponse{Order: o, State: tracking.Unknown}

		snapshot, computeErr := h.computer.Compute(o, now)
		switch {
		case computeErr == nil:
			row.State = snapshot.State()
		case !errors.Is(computeErr, services.ErrInvalidOrder):
			return nil, computeErr
		}

		result = append(result, row)
	}

	return result, nil
}
