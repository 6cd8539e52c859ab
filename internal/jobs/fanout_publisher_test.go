package jobs_test

import (
	"errors"
	"testing"
	"time"

	"pizzatracker/internal/core/domain/model/tracking"
	"pizzatracker/internal/core/domain/services"
	"pizzatracker/internal/core/ports"
	"pizzatracker/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanoutPublisher_Publish(t *testing.T) {
	snapshot, err := services.NewStatusComputer(0, 0).Compute(newOrder(t, 42, "alice"), placedAt)
	require.NoError(t, err)

	failing := &recordingPublisher{err: errors.New("broker down")}
	healthy := &recordingPublisher{}

	err = jobs.FanoutPublisher{failing, healthy}.Publish(t.Context(), snapshot.GroupID(), snapshot)

	require.ErrorContains(t, err, "broker down")
	assert.Equal(t, []tracking.State{tracking.Preparing}, failing.States())
	assert.Equal(t, []tracking.State{tracking.Preparing}, healthy.States(), "a failing publisher must not starve the others")
}

func TestJobManager_StartStop(t *testing.T) {
	queue := jobs.NewTrackingQueue(4)
	tracker := newGatedTracker()
	pool := jobs.NewTrackingPool(queue, tracker, 0, discardLogger())
	recovery := jobs.NewTrackingRecoveryJob(new(MockRecentOrderLister), pool, queue, time.Minute, "@every 1h", discardLogger())
	manager := jobs.NewJobManager(pool, recovery, discardLogger())

	require.NoError(t, manager.StartAll(t.Context()))
	require.NoError(t, queue.Enqueue(t.Context(), ports.TrackingRequest{OrderID: 9}))
	require.Eventually(t, func() bool { return pool.IsTracking(9) }, time.Second, 5*time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		manager.StopAll()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("StopAll should cancel trackers and return")
	}
	assert.False(t, pool.IsTracking(9))
}
