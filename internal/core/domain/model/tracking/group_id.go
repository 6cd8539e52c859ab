package tracking

import (
	"strconv"
	"strings"

	"pizzatracker/internal/pkg/errs"
)

// GroupID addresses every live subscriber of one order.
// Format: "{orderId}:{userId}". Clients derive it the same way.
type GroupID string

// NewGroupID derives the group of an order. The order id comes first and user ids
// may contain ':' so distinct orders never collide.
func NewGroupID(orderID int64, userID string) GroupID {
	return GroupID(strconv.FormatInt(orderID, 10) + ":" + userID)
}

// ParseGroupID splits a group id back into its order and user parts.
func ParseGroupID(raw string) (int64, string, error) {
	idPart, userID, found := strings.Cut(raw, ":")
	if !found || userID == "" {
		return 0, "", errs.NewValueIsInvalidError("groupID")
	}

	orderID, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || orderID <= 0 {
		return 0, "", errs.NewValueIsInvalidErrorWithCause("groupID", err)
	}
	return orderID, userID, nil
}

func (g GroupID) String() string {
	return string(g)
}
