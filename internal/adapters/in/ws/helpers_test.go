package ws_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"pizzatracker/internal/core/domain/model/kernel"
	"pizzatracker/internal/core/domain/model/order"
	"pizzatracker/internal/core/domain/model/tracking"
	"pizzatracker/internal/core/domain/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var placedAt = time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newOrder(t *testing.T, id int64, userID string) *order.Order {
	t.Helper()
	loc, err := kernel.NewLocation(51.5072, -0.1276)
	require.NoError(t, err)
	item, err := order.NewLineItem("Margherita", order.DefaultSize, decimal.RequireFromString("9.99"), nil)
	require.NoError(t, err)
	o, err := order.NewOrder(userID, placedAt, order.Address{
		Name:       "Alice",
		Line1:      "1 Baker Street",
		City:       "London",
		PostalCode: "NW1 6XE",
	}, loc, []*order.LineItem{item})
	require.NoError(t, err)
	o, err = o.WithID(id)
	require.NoError(t, err)
	return o
}

// snapshotAt computes the snapshot of o after the given time since placement.
func snapshotAt(t *testing.T, o *order.Order, offset time.Duration) tracking.Snapshot {
	t.Helper()
	computer := services.NewStatusComputer(services.DefaultPrepDuration, services.DefaultDeliveryDuration)
	s, err := computer.Compute(o, o.CreatedAt().Add(offset))
	require.NoError(t, err)
	return s
}

type fakeConn struct {
	id kernel.UUID

	mu       sync.Mutex
	received []tracking.Snapshot
	fail     error
}

func newFakeConn() *fakeConn {
	return &fakeConn{id: kernel.NewUUID()}
}

func (c *fakeConn) ID() kernel.UUID { return c.id }

func (c *fakeConn) SendSnapshot(_ context.Context, s tracking.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	c.received = append(c.received, s)
	return nil
}

func (c *fakeConn) states() []tracking.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]tracking.State, 0, len(c.received))
	for _, s := range c.received {
		out = append(out, s.State())
	}
	return out
}

var errBrokenPipe = errors.New("broken pipe")
