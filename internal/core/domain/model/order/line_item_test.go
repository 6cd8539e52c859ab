package order_test

import (
	"testing"

	"pizzatracker/internal/core/domain/model/order"
	"pizzatracker/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLineItem(t *testing.T) {
	t.Run("should create a priced item", func(t *testing.T) {
		item, err := order.NewLineItem("Margherita", 17, decimal.RequireFromString("12.00"),
			[]order.Topping{{Name: "Basil", Price: decimal.RequireFromString("0.45")}})

		require.NoError(t, err)
		require.NoError(t, item.Validate())
		assert.Equal(t, "Margherita", item.Name())
		assert.Equal(t, 17, item.Size())
		assert.Len(t, item.Toppings(), 1)
		// 12.00 * 17/12 = 17.00, plus 0.45
		assert.True(t, decimal.RequireFromString("17.45").Equal(item.Price()), item.Price().String())
	})

	t.Run("should reject sizes outside of the menu", func(t *testing.T) {
		for _, size := range []int{0, order.MinimumSize - 1, order.MaximumSize + 1} {
			_, err := order.NewLineItem("Margherita", size, decimal.NewFromInt(10), nil)

			require.ErrorIs(t, err, errs.ErrValueIsOutOfRange, "size %d", size)
		}
	})

	t.Run("should reject negative prices and blank toppings", func(t *testing.T) {
		_, err := order.NewLineItem("Margherita", 12, decimal.NewFromInt(-1),
			[]order.Topping{{Name: "", Price: decimal.NewFromInt(-1)}})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "basePrice")
		assert.Contains(t, err.Error(), "toppings[0].name")
		assert.Contains(t, err.Error(), "toppings[0].price")
	})
}

func TestLineItem_Validate(t *testing.T) {
	var missing *order.LineItem
	require.ErrorIs(t, missing.Validate(), order.ErrLineItemIsNotConstructed)
	require.ErrorIs(t, (&order.LineItem{}).Validate(), order.ErrLineItemIsNotConstructed)
}
