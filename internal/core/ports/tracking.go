package ports

import (
	"context"

	"pizzatracker/internal/core/domain/model/subscription"
	"pizzatracker/internal/core/domain/model/tracking"
)

// TrackingRequest asks the tracking pool to follow one order through its lifecycle.
// It is submitted once, after the order has been committed.
type TrackingRequest struct {
	OrderID int64
	UserID  string
}

// TrackingEnqueuer accepts tracking requests. Enqueue blocks while the queue is
// full and gives up only when ctx is done.
type TrackingEnqueuer interface {
	Enqueue(ctx context.Context, req TrackingRequest) error
}

// StatusPublisher delivers a snapshot to everyone interested in a group.
// Implementations must be safe for concurrent use.
type StatusPublisher interface {
	Publish(ctx context.Context, group tracking.GroupID, snapshot tracking.Snapshot) error
}

// PushSender delivers one encrypted push message to a subscription endpoint.
// A non-nil error means the push service did not accept the message.
type PushSender interface {
	Send(ctx context.Context, sub *subscription.Subscription, payload []byte) error
}
