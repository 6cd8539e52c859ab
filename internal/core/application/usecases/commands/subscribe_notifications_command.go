package commands

import (
	"errors"

	"pizzatracker/internal/core/domain/model/subscription"
	"pizzatracker/internal/pkg/guard"
)

var ErrSubscribeNotificationsCommandIsNotConstructed = errors.New(
	"SubscribeNotificationsCommand must be created via NewSubscribeNotificationsCommand constructor",
)

// SubscribeNotificationsCommand registers the browser push endpoint of a user,
// replacing any earlier registration.
type SubscribeNotificationsCommand struct {
	subscription *subscription.Subscription

	guard guard.ConstructorGuard
}

// NewSubscribeNotificationsCommand validates the endpoint and keys.
func NewSubscribeNotificationsCommand(
	userID, endpoint, p256dh, auth string,
) (SubscribeNotificationsCommand, error) {
	sub, err := subscription.NewSubscription(userID, endpoint, p256dh, auth)
	if err != nil {
		return SubscribeNotificationsCommand{}, err
	}

	return SubscribeNotificationsCommand{
		subscription: sub,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c SubscribeNotificationsCommand) Validate() error {
	return c.guard.Validate(ErrSubscribeNotificationsCommandIsNotConstructed)
}

// Subscription returns the subscription to store.
func (c SubscribeNotificationsCommand) Subscription() *subscription.Subscription {
	return c.subscription
}
