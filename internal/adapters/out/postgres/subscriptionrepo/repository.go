package subscriptionrepo

import (
	"context"
	"errors"
	"strings"

	"pizzatracker/internal/core/domain/model/subscription"
	"pizzatracker/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSubscriptionRepository implements SubscriptionRepository using GORM.
type GormSubscriptionRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(key string, aggregate any)
}

// NewGormSubscriptionRepository creates a new GORM subscription repository.
// tracker may be nil outside a unit of work.
func NewGormSubscriptionRepository(db *gorm.DB, tracker aggregateTracker) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{
		db:      db,
		tracker: tracker,
	}
}

// Upsert stores the subscription, replacing the endpoint and keys of any
// earlier subscription of the same user. The first row id is kept.
func (r *GormSubscriptionRepository) Upsert(ctx context.Context, aggregate *subscription.Subscription) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"endpoint", "p256dh", "auth", "updated_at"}),
		}).
		Create(&dto).Error
	if err != nil {
		return err
	}

	if r.tracker != nil {
		r.tracker.TrackAggregate("subscription:"+aggregate.UserID(), aggregate)
	}
	return nil
}

// GetByUser returns the user's subscription or an ObjectNotFoundError.
func (r *GormSubscriptionRepository) GetByUser(ctx context.Context, userID string) (*subscription.Subscription, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errs.NewValueIsRequiredError("userID")
	}

	var dto SubscriptionDTO
	if err := r.db.WithContext(ctx).First(&dto, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("userID", userID)
		}
		return nil, err
	}

	return toDomain(dto)
}
