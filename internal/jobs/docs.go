// Package jobs runs the background side of order tracking.
//
// # Components
//
//  1. TrackingQueue - bounded FIFO of tracking requests between order placement and the pool
//  2. TrackingPool - drains the queue and runs one OrderTracker goroutine per order
//  3. OrderTracker - recomputes an order's status every poll interval and publishes changes
//  4. TrackingRecoveryJob - cron job re-enqueueing recent orders nobody is tracking
//  5. FanoutPublisher - sends each status change to several publishers
//
// # Usage
//
//	queue := jobs.NewTrackingQueue(100)
//	tracker := jobs.NewOrderTracker(orders, computer, publisher, notifier, logger)
//	pool := jobs.NewTrackingPool(queue, tracker, 0, logger)
//	recovery := jobs.NewTrackingRecoveryJob(orders, pool, queue, computer.Lifetime(), "@every 30s", logger)
//
//	jobManager := jobs.NewJobManager(pool, recovery, logger)
//	if err := jobManager.StartAll(ctx); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Cancellation
//
// StopAll cancels the pool context. The drain loop returns, and every tracker
// exits at its next wait without publishing again.
//
// # Error Handling
//
// - A tracker's failure is logged by the pool and affects no other order
// - Publishing and push failures are logged by the tracker and never end it
// - Shutdown is reported as ErrTrackingCancelled and logged at info level
package jobs
