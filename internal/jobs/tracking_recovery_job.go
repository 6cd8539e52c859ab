package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pizzatracker/internal/core/domain/model/order"
	"pizzatracker/internal/core/ports"

	"github.com/robfig/cron/v3"
)

const (
	// DefaultRecoverySchedule runs the recovery job every half minute.
	DefaultRecoverySchedule = "@every 30s"

	recoveryEnqueueTimeout = 5 * time.Second
)

// RecentOrderLister finds orders that may still be on their delivery timeline.
type RecentOrderLister interface {
	ListPlacedSince(ctx context.Context, since time.Time) ([]*order.Order, error)
}

// TrackingRecoveryJob re-enqueues orders that should be tracked but are not,
// typically because the process restarted while they were in flight.
type TrackingRecoveryJob struct {
	orders   RecentOrderLister
	pool     *TrackingPool
	queue    ports.TrackingEnqueuer
	lifetime time.Duration
	schedule string
	now      func() time.Time
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewTrackingRecoveryJob creates the job. lifetime is the full preparation plus
// delivery window; orders older than that are already delivered.
func NewTrackingRecoveryJob(
	orders RecentOrderLister,
	pool *TrackingPool,
	queue ports.TrackingEnqueuer,
	lifetime time.Duration,
	schedule string,
	logger *slog.Logger,
) *TrackingRecoveryJob {
	if schedule == "" {
		schedule = DefaultRecoverySchedule
	}
	return &TrackingRecoveryJob{
		orders:   orders,
		pool:     pool,
		queue:    queue,
		lifetime: lifetime,
		schedule: schedule,
		now:      time.Now,
		cron:     cron.New(),
		logger:   logger.With("component", "tracking_recovery_job"),
	}
}

// Start schedules the job. The first run happens on the first schedule tick.
func (j *TrackingRecoveryJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx := context.Background()
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Tracking recovery job failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Tracking recovery job started", "schedule", j.schedule)
	return nil
}

// Stop stops scheduling and waits for a running pass to finish.
func (j *TrackingRecoveryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Tracking recovery job stopped")
}

// RunOnce enqueues every recent order the pool is not tracking and returns how
// many were enqueued. Orders without a delivery coordinate and orders whose
// tracker already found them untrackable are skipped. Each enqueue waits at most a few seconds so a saturated
// queue delays recovery instead of wedging the scheduler.
func (j *TrackingRecoveryJob) RunOnce(ctx context.Context) (int, error) {
	orders, err := j.orders.ListPlacedSince(ctx, j.now().Add(-j.lifetime))
	if err != nil {
		return 0, err
	}

	recent := make([]int64, 0, len(orders))
	for _, o := range orders {
		recent = append(recent, o.ID())
	}
	j.pool.RetainFailed(recent)

	enqueued := 0
	for _, o := range orders {
		if j.pool.IsTracking(o.ID()) || j.pool.HasFailed(o.ID()) {
			continue
		}
		if !o.HasDeliveryLocation() {
			j.logger.DebugContext(ctx, "Order has no delivery location, not recovering", "order_id", o.ID())
			continue
		}

		enqueueCtx, cancel := context.WithTimeout(ctx, recoveryEnqueueTimeout)
		err = j.queue.Enqueue(enqueueCtx, ports.TrackingRequest{OrderID: o.ID(), UserID: o.UserID()})
		cancel()

		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			j.logger.WarnContext(ctx, "Tracking queue is full, deferring recovery", "order_id", o.ID())
			break
		}
		if err != nil {
			return enqueued, err
		}
		enqueued++
	}

	if enqueued > 0 {
		j.logger.InfoContext(ctx, "Recovered order trackers", "count", enqueued)
	}
	return enqueued, nil
}
