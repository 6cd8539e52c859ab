// Package webpush delivers push messages to browser push services using VAPID.
package webpush

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"pizzatracker/internal/core/domain/model/subscription"

	"github.com/SherClockHolmes/webpush-go"
)

const (
	defaultTTL     = 60
	defaultTimeout = 10 * time.Second
)

var (
	// ErrSubscriptionExpired is returned when the push service no longer knows the endpoint.
	ErrSubscriptionExpired = errors.New("push subscription expired")

	// ErrPushRejected is returned for any other non-success response.
	ErrPushRejected = errors.New("push message rejected")
)

// Config holds the VAPID identity of this service.
type Config struct {
	PublicKey  string
	PrivateKey string
	// Subscriber is a contact URL or e-mail address sent to push services.
	Subscriber string
	TTL        int
}

// Sender implements ports.PushSender on top of webpush-go.
type Sender struct {
	config Config
	client webpush.HTTPClient
}

// NewSender creates a sender. A nil client selects an http.Client with a short timeout.
func NewSender(config Config, client webpush.HTTPClient) *Sender {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if config.TTL <= 0 {
		config.TTL = defaultTTL
	}
	return &Sender{config: config, client: client}
}

// Send encrypts payload for sub and posts it to the subscription endpoint.
func (s *Sender) Send(ctx context.Context, sub *subscription.Subscription, payload []byte) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint(),
		Keys: webpush.Keys{
			Auth:   sub.Auth(),
			P256dh: sub.P256dh(),
		},
	}, &webpush.Options{
		HTTPClient:      s.client,
		Subscriber:      s.config.Subscriber,
		VAPIDPublicKey:  s.config.PublicKey,
		VAPIDPrivateKey: s.config.PrivateKey,
		TTL:             s.config.TTL,
		Urgency:         webpush.UrgencyHigh,
	})
	if err != nil {
		return fmt.Errorf("send push notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrSubscriptionExpired, resp.Status)
	case resp.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrPushRejected, resp.Status)
	}
	return nil
}

// GenerateKeys creates a fresh VAPID key pair for development setups.
func GenerateKeys() (privateKey, publicKey string, err error) {
	return webpush.GenerateVAPIDKeys()
}
