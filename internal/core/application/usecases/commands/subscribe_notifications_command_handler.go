package commands

import (
	"context"
)

// SubscribeNotificationsCommandHandler stores a user's push subscription.
type SubscribeNotificationsCommandHandler struct {
	uowFactory SubscriptionUoWFactory
}

func NewSubscribeNotificationsCommandHandler(uowFactory SubscriptionUoWFactory) SubscribeNotificationsCommandHandler {
	return SubscribeNotificationsCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle upserts the subscription inside a transaction.
func (h *SubscribeNotificationsCommandHandler) Handle(ctx context.Context, cmd SubscribeNotificationsCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.SubscriptionRepository().Upsert(ctx, cmd.Subscription()); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
