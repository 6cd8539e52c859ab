package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// JobManager coordinates the background work of the application: the tracking
// pool and the scheduled recovery job.
type JobManager struct {
	pool        *TrackingPool
	recoveryJob *TrackingRecoveryJob
	logger      *slog.Logger

	cancel context.CancelFunc
	done   sync.WaitGroup
}

// NewJobManager creates a new job manager. recoveryJob may be nil.
func NewJobManager(pool *TrackingPool, recoveryJob *TrackingRecoveryJob, logger *slog.Logger) *JobManager {
	return &JobManager{
		pool:        pool,
		recoveryJob: recoveryJob,
		logger:      logger.With("component", "job_manager"),
	}
}

// StartAll starts the tracking pool and the scheduled jobs.
// Trackers run under a context derived from ctx; StopAll cancels it.
func (jm *JobManager) StartAll(ctx context.Context) error {
	poolCtx, cancel := context.WithCancel(ctx)
	jm.cancel = cancel

	jm.done.Add(1)
	go func() {
		defer jm.done.Done()
		if err := jm.pool.Run(poolCtx); err != nil {
			jm.logger.ErrorContext(poolCtx, "Tracking pool exited", "error", err)
		}
	}()

	if jm.recoveryJob != nil {
		if err := jm.recoveryJob.Start(); err != nil {
			jm.StopAll()
			return fmt.Errorf("failed to start tracking recovery job: %w", err)
		}
	}

	return nil
}

// StopAll stops the scheduled jobs, cancels every tracker and waits for them to exit.
func (jm *JobManager) StopAll() {
	if jm.recoveryJob != nil {
		jm.recoveryJob.Stop()
	}
	if jm.cancel != nil {
		jm.cancel()
	}

	jm.done.Wait()
	jm.pool.Wait()
}
