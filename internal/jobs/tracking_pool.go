package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"pizzatracker/internal/core/domain/services"
	"pizzatracker/internal/core/ports"

	"golang.org/x/sync/semaphore"
)

// Tracker follows one order until it is delivered or ctx ends.
type Tracker interface {
	Track(ctx context.Context, req ports.TrackingRequest) error
}

// TrackingPool drains the tracking queue and runs one tracker goroutine per order.
//
// At most one tracker runs per order id: a request for an order that is already
// tracked is dropped. With a positive concurrency cap the drain loop reserves a
// slot before dequeuing, so a saturated pool leaves requests in the queue and
// producers feel the backpressure.
type TrackingPool struct {
	queue   *TrackingQueue
	tracker Tracker
	slots   *semaphore.Weighted
	logger  *slog.Logger

	mu     sync.Mutex
	active map[int64]struct{}
	failed map[int64]struct{}
	wg     sync.WaitGroup
}

// NewTrackingPool creates a pool. maxConcurrent <= 0 means unbounded.
func NewTrackingPool(queue *TrackingQueue, tracker Tracker, maxConcurrent int, logger *slog.Logger) *TrackingPool {
	p := &TrackingPool{
		queue:   queue,
		tracker: tracker,
		logger:  logger.With("component", "tracking_pool"),
		active:  make(map[int64]struct{}),
		failed:  make(map[int64]struct{}),
	}
	if maxConcurrent > 0 {
		p.slots = semaphore.NewWeighted(int64(maxConcurrent))
	}
	return p
}

// Run drains the queue until ctx is done. Trackers started by Run inherit ctx,
// so cancelling it stops them too; use Wait to block until they have exited.
func (p *TrackingPool) Run(ctx context.Context) error {
	p.logger.InfoContext(ctx, "Tracking pool started", "queue_capacity", p.queue.Cap())

	for {
		if err := p.acquire(ctx); err != nil {
			p.logger.InfoContext(context.Background(), "Tracking pool stopped")
			return nil
		}

		req, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.release()
			if errors.Is(err, ErrTrackingCancelled) {
				p.logger.InfoContext(context.Background(), "Tracking pool stopped")
				return nil
			}
			return fmt.Errorf("dequeue tracking request: %w", err)
		}

		if !p.claim(req.OrderID) {
			p.release()
			p.logger.InfoContext(ctx, "Order is already tracked, dropping request", "order_id", req.OrderID)
			continue
		}

		p.wg.Add(1)
		go p.track(ctx, req)
	}
}

// Wait blocks until every tracker started by Run has returned.
func (p *TrackingPool) Wait() {
	p.wg.Wait()
}

// IsTracking reports whether a tracker for orderID is running.
func (p *TrackingPool) IsTracking(orderID int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.active[orderID]
	return ok
}

// HasFailed reports whether orderID's tracker gave up because the order cannot
// be placed on the delivery timeline. Retrying such an order fails the same way.
func (p *TrackingPool) HasFailed(orderID int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.failed[orderID]
	return ok
}

// RetainFailed forgets every failed order not in recent.
func (p *TrackingPool) RetainFailed(recent []int64) {
	keep := make(map[int64]struct{}, len(recent))
	for _, id := range recent {
		keep[id] = struct{}{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for id := range p.failed {
		if _, ok := keep[id]; !ok {
			delete(p.failed, id)
		}
	}
}

// Active returns the ids of orders currently tracked, in ascending order.
func (p *TrackingPool) Active() []int64 {
	p.mu.Lock()
	ids := make([]int64, 0, len(p.active))
	for id := range p.active {
		ids = append(ids, id)
	}
	p.mu.Unlock()

	slices.Sort(ids)
	return ids
}

func (p *TrackingPool) track(ctx context.Context, req ports.TrackingRequest) {
	logger := p.logger.With("order_id", req.OrderID)

	defer p.wg.Done()
	defer p.release()
	defer p.unclaim(req.OrderID)
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "Order tracker panicked", "panic", r)
		}
	}()

	logger.InfoContext(ctx, "Order tracking started")

	err := p.tracker.Track(ctx, req)
	switch {
	case err == nil:
		logger.InfoContext(ctx, "Order tracking finished")
	case errors.Is(err, ErrTrackingCancelled):
		logger.InfoContext(context.Background(), "Order tracking cancelled")
	case errors.Is(err, services.ErrInvalidOrder):
		p.markFailed(req.OrderID)
		logger.ErrorContext(ctx, "Order cannot be tracked", "error", err)
	default:
		logger.ErrorContext(ctx, "Order tracking failed", "error", err)
	}
}

func (p *TrackingPool) claim(orderID int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.active[orderID]; ok {
		return false
	}
	p.active[orderID] = struct{}{}
	return true
}

func (p *TrackingPool) markFailed(orderID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failed[orderID] = struct{}{}
}

func (p *TrackingPool) unclaim(orderID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.active, orderID)
}

func (p *TrackingPool) acquire(ctx context.Context) error {
	if p.slots == nil {
		return ctx.Err()
	}
	return p.slots.Acquire(ctx, 1)
}

func (p *TrackingPool) release() {
	if p.slots != nil {
		p.slots.Release(1)
	}
}
