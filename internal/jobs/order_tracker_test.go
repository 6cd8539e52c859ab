package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"pizzatracker/internal/core/domain/model/order"
	"pizzatracker/internal/core/domain/model/tracking"
	"pizzatracker/internal/core/domain/services"
	"pizzatracker/internal/core/ports"
	"pizzatracker/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracker(
	orders jobs.OrderReader,
	publisher ports.StatusPublisher,
	notifier jobs.Notifier,
	clock *fakeClock,
) *jobs.OrderTracker {
	return jobs.NewOrderTracker(
		orders,
		services.NewStatusComputer(10*time.Second, 60*time.Second),
		publisher,
		notifier,
		discardLogger(),
		jobs.WithPollInterval(4*time.Second),
		jobs.WithClock(clock.Now, clock.Wait),
	)
}

func TestOrderTracker_Track_FullLifecycle(t *testing.T) {
	orders := stubOrderReader{42: newOrder(t, 42, "alice")}
	publisher := &recordingPublisher{}
	notifier := &recordingNotifier{}
	clock := newFakeClock(placedAt)

	err := newTracker(orders, publisher, notifier, clock).Track(t.Context(), ports.TrackingRequest{OrderID: 42, UserID: "alice"})

	require.NoError(t, err)
	assert.Equal(t, []tracking.State{tracking.Preparing, tracking.OutForDelivery, tracking.Delivered}, publisher.States())
	for _, p := range publisher.published {
		assert.Equal(t, tracking.GroupID("42:alice"), p.group)
	}
	assert.Equal(t, []string{
		"Your order has been dispatched!",
		"Your order is now delivered. Enjoy!",
	}, notifier.Messages())
	// ticks at 0,4,...,68 then 72 is delivered: 18 waits
	assert.Equal(t, 18, clock.waits)
}

func TestOrderTracker_Track_StartingLate(t *testing.T) {
	orders := stubOrderReader{42: newOrder(t, 42, "alice")}
	publisher := &recordingPublisher{}
	notifier := &recordingNotifier{}
	clock := newFakeClock(placedAt.Add(65 * time.Second))

	err := newTracker(orders, publisher, notifier, clock).Track(t.Context(), ports.TrackingRequest{OrderID: 42, UserID: "alice"})

	require.NoError(t, err)
	assert.Equal(t, []tracking.State{tracking.OutForDelivery, tracking.Delivered}, publisher.States())
	assert.Len(t, notifier.Messages(), 2)
}

func TestOrderTracker_Track_AlreadyDelivered(t *testing.T) {
	orders := stubOrderReader{42: newOrder(t, 42, "alice")}
	publisher := &recordingPublisher{}
	clock := newFakeClock(placedAt.Add(time.Hour))

	err := newTracker(orders, publisher, &recordingNotifier{}, clock).Track(t.Context(), ports.TrackingRequest{OrderID: 42})

	require.NoError(t, err)
	assert.Equal(t, []tracking.State{tracking.Delivered}, publisher.States())
	assert.Equal(t, 0, clock.waits)
}

func TestOrderTracker_Track_CancelledDuringWait(t *testing.T) {
	orders := stubOrderReader{42: newOrder(t, 42, "alice")}
	publisher := &recordingPublisher{}
	notifier := &recordingNotifier{}
	clock := newFakeClock(placedAt)

	ctx, cancel := context.WithCancel(t.Context())
	clock.onWait = func(n int) error {
		if n == 2 {
			cancel()
			return ctx.Err()
		}
		return nil
	}

	err := newTracker(orders, publisher, notifier, clock).Track(ctx, ports.TrackingRequest{OrderID: 42, UserID: "alice"})

	require.ErrorIs(t, err, jobs.ErrTrackingCancelled)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []tracking.State{tracking.Preparing}, publisher.States())
	assert.Empty(t, notifier.Messages())
}

func TestOrderTracker_Track_PublishFailureDoesNotStop(t *testing.T) {
	orders := stubOrderReader{42: newOrder(t, 42, "alice")}
	publisher := &recordingPublisher{err: errors.New("hub unavailable")}
	notifier := &recordingNotifier{}

	err := newTracker(orders, publisher, notifier, newFakeClock(placedAt)).Track(t.Context(), ports.TrackingRequest{OrderID: 42})

	require.NoError(t, err)
	assert.Len(t, publisher.States(), 3)
	assert.Len(t, notifier.Messages(), 2)
}

func TestOrderTracker_Track_UnknownOrder(t *testing.T) {
	publisher := &recordingPublisher{}

	err := newTracker(stubOrderReader{}, publisher, &recordingNotifier{}, newFakeClock(placedAt)).
		Track(t.Context(), ports.TrackingRequest{OrderID: 7})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load order 7")
	assert.Empty(t, publisher.States())
}

func TestOrderTracker_Track_ReadsOrderOncePerTask(t *testing.T) {
	reader := &countingReader{stubOrderReader: stubOrderReader{42: newOrder(t, 42, "alice")}}

	err := newTracker(reader, &recordingPublisher{}, &recordingNotifier{}, newFakeClock(placedAt)).
		Track(t.Context(), ports.TrackingRequest{OrderID: 42})

	require.NoError(t, err)
	assert.Equal(t, 1, reader.calls)
}

type countingReader struct {
	stubOrderReader
	calls int
}

func (r *countingReader) Get(ctx context.Context, id int64) (*order.Order, error) {
	r.calls++
	return r.stubOrderReader.Get(ctx, id)
}
