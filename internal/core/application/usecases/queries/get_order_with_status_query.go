package queries

import (
	"errors"
	"fmt"
	"strings"

	"pizzatracker/internal/pkg/errs"
	"pizzatracker/internal/pkg/guard"
)

var ErrGetOrderWithStatusQueryIsNotConstructed = errors.New(
	"GetOrderWithStatusQuery must be created via NewGetOrderWithStatusQuery constructor",
)

// GetOrderWithStatusQuery asks for one order of the requesting user together with
// its current tracking snapshot.
//
// Example:
//
//	query, err := NewGetOrderWithStatusQuery(42, "alice")
//	snapshot, err := handler.Handle(ctx, query)
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    // unknown order, or it belongs to someone else
//	}
type GetOrderWithStatusQuery struct {
	orderID int64
	userID  string

	guard guard.ConstructorGuard
}

func NewGetOrderWithStatusQuery(orderID int64, userID string) (GetOrderWithStatusQuery, error) {
	var err error
	if orderID <= 0 {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause("orderID", fmt.Errorf("%d is not greater than 0", orderID)))
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("userID"))
	}
	if err != nil {
		return GetOrderWithStatusQuery{}, err
	}

	return GetOrderWithStatusQuery{
		orderID: orderID,
		userID:  userID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderWithStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderWithStatusQueryIsNotConstructed)
}

func (q GetOrderWithStatusQuery) OrderID() int64 {
	return q.orderID
}

func (q GetOrderWithStatusQuery) UserID() string {
	return q.userID
}
