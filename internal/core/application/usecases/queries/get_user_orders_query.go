package queries

import (
	"errors"
	"strings"

	"pizzatracker/internal/core/domain/model/order"
	"pizzatracker/internal/core/domain/model/tracking"
	"pizzatracker/internal/pkg/errs"
	"pizzatracker/internal/pkg/guard"
)

var ErrGetUserOrdersQueryIsNotConstructed = errors.New(
	"GetUserOrdersQuery must be created via NewGetUserOrdersQuery constructor",
)

// GetUserOrdersQuery lists the requesting user's orders with their current state.
type GetUserOrdersQuery struct {
	userID string

	guard guard.ConstructorGuard
}

func NewGetUserOrdersQuery(userID string) (GetUserOrdersQuery, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return GetUserOrdersQuery{}, errs.NewValueIsRequiredError("userID")
	}

	return GetUserOrdersQuery{
		userID: userID,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetUserOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetUserOrdersQueryIsNotConstructed)
}

func (q GetUserOrdersQuery) UserID() string {
	return q.userID
}

// GetUserOrdersQueryResponse is one row of the "my orders" page.
// State is tracking.Unknown for orders without a delivery coordinate.
type GetUserOrdersQueryResponse struct {
	Order *order.Order
	State tracking.State
}
