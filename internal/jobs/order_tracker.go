package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pizzatracker/internal/core/domain/model/order"
	"pizzatracker/internal/core/domain/model/tracking"
	"pizzatracker/internal/core/domain/services"
	"pizzatracker/internal/core/ports"
)

// DefaultPollInterval is how often a tracker recomputes its order's status.
const DefaultPollInterval = 4 * time.Second

// OrderReader loads the order a tracker follows.
type OrderReader interface {
	Get(ctx context.Context, id int64) (*order.Order, error)
}

// Notifier delivers a push message to the owner of an order. It must not block
// for long and must not fail the tracker; errors are its own business.
type Notifier interface {
	Notify(ctx context.Context, o *order.Order, message string)
}

// WaitFunc pauses for d or until ctx is done, returning ctx.Err() in the latter case.
type WaitFunc func(ctx context.Context, d time.Duration) error

// OrderTracker follows a single order from placement until delivery, publishing a
// snapshot whenever the state changes.
type OrderTracker struct {
	orders       OrderReader
	computer     services.StatusComputer
	publisher    ports.StatusPublisher
	notifier     Notifier
	pollInterval time.Duration
	now          func() time.Time
	wait         WaitFunc
	logger       *slog.Logger
}

// OrderTrackerOption customizes an OrderTracker.
type OrderTrackerOption func(*OrderTracker)

// WithClock replaces the wall clock and the timer used between polls.
func WithClock(now func() time.Time, wait WaitFunc) OrderTrackerOption {
	return func(t *OrderTracker) {
		t.now = now
		t.wait = wait
	}
}

// WithPollInterval sets the time between status computations.
func WithPollInterval(d time.Duration) OrderTrackerOption {
	return func(t *OrderTracker) {
		if d > 0 {
			t.pollInterval = d
		}
	}
}

// NewOrderTracker builds a tracker that polls every DefaultPollInterval unless
// overridden with WithPollInterval.
func NewOrderTracker(
	orders OrderReader,
	computer services.StatusComputer,
	publisher ports.StatusPublisher,
	notifier Notifier,
	logger *slog.Logger,
	opts ...OrderTrackerOption,
) *OrderTracker {
	t := &OrderTracker{
		orders:       orders,
		computer:     computer,
		publisher:    publisher,
		notifier:     notifier,
		pollInterval: DefaultPollInterval,
		now:          time.Now,
		wait:         sleep,
		logger:       logger.With("component", "order_tracker"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Track runs the tracking loop for req. It returns nil once Delivered has been
// published, an error wrapping ErrTrackingCancelled when ctx ends first, or the
// load/compute error that made the order untrackable.
//
// Publishing failures are logged and do not end the loop. Nothing is published
// after ctx is done.
func (t *OrderTracker) Track(ctx context.Context, req ports.TrackingRequest) error {
	o, err := t.orders.Get(ctx, req.OrderID)
	if err != nil {
		return fmt.Errorf("load order %d: %w", req.OrderID, err)
	}

	logger := t.logger.With("order_id", o.ID())
	if !o.IsOwnedBy(req.UserID) {
		logger.WarnContext(ctx, "Tracking request user differs from order owner",
			"request_user_id", req.UserID, "owner_user_id", o.UserID())
	}

	last := tracking.Unknown
	for {
		if err = ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrTrackingCancelled, err)
		}

		snapshot, computeErr := t.computer.Compute(o, t.now())
		if computeErr != nil {
			return computeErr
		}

		state := snapshot.State()
		if state != last && state.CanFollow(last) {
			t.publish(ctx, logger, snapshot)
			if state.IsNotifiable() {
				t.notifier.Notify(ctx, o, state.Message())
			}
			last = state
		}

		if last.IsTerminal() {
			return nil
		}

		if err = t.wait(ctx, t.pollInterval); err != nil {
			return fmt.Errorf("%w: %w", ErrTrackingCancelled, err)
		}
	}
}

func (t *OrderTracker) publish(ctx context.Context, logger *slog.Logger, snapshot tracking.Snapshot) {
	if err := t.publisher.Publish(ctx, snapshot.GroupID(), snapshot); err != nil {
		logger.WarnContext(ctx, "Failed to publish order status", "state", snapshot.State().String(), "error", err)
		return
	}
	logger.InfoContext(ctx, "Order status published", "state", snapshot.State().String())
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
