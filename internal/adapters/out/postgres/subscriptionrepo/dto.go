// Package subscriptionrepo persists browser push subscriptions, one per user.
package subscriptionrepo

import (
	"time"

	"pizzatracker/internal/core/domain/model/kernel"
	"pizzatracker/internal/core/domain/model/subscription"

	"github.com/google/uuid"
)

// SubscriptionDTO is the row of the push_subscriptions table.
type SubscriptionDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    string    `gorm:"type:text;not null;uniqueIndex"`
	Endpoint  string    `gorm:"type:text;not null"`
	P256dh    string    `gorm:"type:text;not null"`
	Auth      string    `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (SubscriptionDTO) TableName() string {
	return "push_subscriptions"
}

func fromDomain(s *subscription.Subscription) SubscriptionDTO {
	return SubscriptionDTO{
		ID:       s.ID().Bytes(),
		UserID:   s.UserID(),
		Endpoint: s.Endpoint(),
		P256dh:   s.P256dh(),
		Auth:     s.Auth(),
	}
}

func toDomain(dto SubscriptionDTO) (*subscription.Subscription, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	return subscription.RestoreSubscription(id, dto.UserID, dto.Endpoint, dto.P256dh, dto.Auth)
}
