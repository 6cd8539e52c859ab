package jobs_test

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

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var placedAt = time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newOrder(t *testing.T, id int64, userID string) *order.Order {
	t.Helper()

	loc, err := kernel.NewLocation(51.5001, -0.1239)
	require.NoError(t, err)
	return restoreOrder(t, id, userID, &loc)
}

func restoreOrder(t *testing.T, id int64, userID string, loc *kernel.Location) *order.Order {
	t.Helper()

	item, err := order.NewLineItem("Margherita", order.DefaultSize, decimal.RequireFromString("9.99"), nil)
	require.NoError(t, err)

	o, err := order.RestoreOrder(
		id,
		userID,
		placedAt,
		order.Address{Name: "Alice", Line1: "1 Test Street", City: "London", PostalCode: "SW1A 0AA"},
		loc,
		[]*order.LineItem{item},
	)
	require.NoError(t, err)
	return o
}

// fakeClock advances virtual time on every wait instead of sleeping.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	waits int

	// onWait, when set, runs before time advances; returning an error aborts the wait.
	onWait func(n int) error
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	c.waits++
	n := c.waits
	hook := c.onWait
	c.mu.Unlock()

	if hook != nil {
		if err := hook(n); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return nil
}

type publishedSnapshot struct {
	group tracking.GroupID
	state tracking.State
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []publishedSnapshot
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, group tracking.GroupID, snapshot tracking.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, publishedSnapshot{group: group, state: snapshot.State()})
	return p.err
}

func (p *recordingPublisher) States() []tracking.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	states := make([]tracking.State, 0, len(p.published))
	for _, s := range p.published {
		states = append(states, s.state)
	}
	return states
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, _ *order.Order, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type stubOrderReader map[int64]*order.Order

func (r stubOrderReader) Get(_ context.Context, id int64) (*order.Order, error) {
	o, ok := r[id]
	if !ok {
		return nil, errors.New("order not found")
	}
	return o, nil
}
