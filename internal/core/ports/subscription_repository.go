package ports

import (
	"context"

	"pizzatracker/internal/core/domain/model/subscription"
)

// SubscriptionRepository stores at most one push subscription per user.
type SubscriptionRepository interface {
	// Upsert stores s, replacing any subscription the same user registered before.
	Upsert(ctx context.Context, s *subscription.Subscription) error

	// GetByUser returns the user's subscription.
	// Returns errs.ObjectNotFoundError when the user never subscribed.
	GetByUser(ctx context.Context, userID string) (*subscription.Subscription, error)
}
