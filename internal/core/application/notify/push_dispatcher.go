// Package notify turns tracking transitions into web push notifications.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"pizzatracker/internal/core/domain/model/order"
	"pizzatracker/internal/core/domain/model/subscription"
	"pizzatracker/internal/core/ports"
	"pizzatracker/internal/pkg/errs"
)

// SubscriptionFinder looks up the push subscription of a user.
type SubscriptionFinder interface {
	GetByUser(ctx context.Context, userID string) (*subscription.Subscription, error)
}

// Payload is the JSON document handed to the browser's service worker.
type Payload struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// PushDispatcher sends best-effort push notifications to order owners.
// Nothing is retried, and a user without a subscription is silently skipped.
type PushDispatcher struct {
	subscriptions SubscriptionFinder
	sender        ports.PushSender
	baseURL       string
	logger        *slog.Logger
}

// NewPushDispatcher creates a dispatcher linking notifications to pages under baseURL.
func NewPushDispatcher(
	subscriptions SubscriptionFinder,
	sender ports.PushSender,
	baseURL string,
	logger *slog.Logger,
) *PushDispatcher {
	return &PushDispatcher{
		subscriptions: subscriptions,
		sender:        sender,
		baseURL:       strings.TrimRight(baseURL, "/"),
		logger:        logger.With("component", "push_dispatcher"),
	}
}

// Notify pushes message to the owner of o. Failures are logged, never returned.
func (d *PushDispatcher) Notify(ctx context.Context, o *order.Order, message string) {
	logger := d.logger.With("order_id", o.ID(), "user_id", o.UserID())

	sub, err := d.subscriptions.GetByUser(ctx, o.UserID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		logger.DebugContext(ctx, "User has no push subscription, skipping notification")
		return
	}
	if err != nil {
		logger.WarnContext(ctx, "Failed to load push subscription", "error", err)
		return
	}

	payload, err := json.Marshal(Payload{Message: message, URL: d.OrderURL(o.ID())})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to encode push payload", "error", err)
		return
	}

	if err = d.sender.Send(ctx, sub, payload); err != nil {
		logger.WarnContext(ctx, "Push notification was not delivered", "endpoint", sub.Endpoint(), "error", err)
		return
	}

	logger.InfoContext(ctx, "Push notification sent")
}

// OrderURL is the page a notification opens.
func (d *PushDispatcher) OrderURL(orderID int64) string {
	return fmt.Sprintf("%s/myorders/%d", d.baseURL, orderID)
}
