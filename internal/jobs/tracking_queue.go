package jobs

import (
	"context"
	"errors"
	"fmt"

	"pizzatracker/internal/core/ports"
)

// DefaultQueueCapacity is the number of tracking requests buffered before
// producers start to block.
const DefaultQueueCapacity = 100

// ErrTrackingCancelled is returned by the tracking queue and trackers when the
// service is shutting down. It wraps the context error that caused it.
var ErrTrackingCancelled = errors.New("tracking cancelled")

// TrackingQueue is the bounded FIFO between order placement and the tracking pool.
// Producers block while it is full; every request is handed to exactly one consumer.
type TrackingQueue struct {
	requests chan ports.TrackingRequest
}

// NewTrackingQueue creates a queue holding up to capacity requests.
// Non-positive capacities fall back to DefaultQueueCapacity.
func NewTrackingQueue(capacity int) *TrackingQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &TrackingQueue{
		requests: make(chan ports.TrackingRequest, capacity),
	}
}

// Enqueue adds req to the queue, waiting for free space if necessary.
// It only fails when ctx is done before the request was accepted.
func (q *TrackingQueue) Enqueue(ctx context.Context, req ports.TrackingRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case q.requests <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dequeue removes the oldest request, waiting until one is available.
// On shutdown it returns an error wrapping both ErrTrackingCancelled and ctx.Err().
func (q *TrackingQueue) Dequeue(ctx context.Context) (ports.TrackingRequest, error) {
	select {
	case req := <-q.requests:
		return req, nil
	case <-ctx.Done():
		return ports.TrackingRequest{}, fmt.Errorf("%w: %w", ErrTrackingCancelled, ctx.Err())
	}
}

// Len reports the number of requests waiting.
func (q *TrackingQueue) Len() int {
	return len(q.requests)
}

// Cap reports the queue capacity.
func (q *TrackingQueue) Cap() int {
	return cap(q.requests)
}
