package subscription

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"pizzatracker/internal/core/domain/model/kernel"
	"pizzatracker/internal/pkg/errs"
)

// ErrSubscriptionIsNotConstructed is returned when a Subscription was not built
// through NewSubscription or RestoreSubscription.
var ErrSubscriptionIsNotConstructed = errors.New("Subscription must be created via NewSubscription constructor")

// Subscription is a user's web push endpoint with its encryption keys.
// A user owns at most one subscription; registering again replaces it.
type Subscription struct {
	id       kernel.UUID
	userID   string
	endpoint string
	p256dh   string
	auth     string

	isConstructed bool
}

// NewSubscription registers a push endpoint for a user.
//
// Example:
//
//	sub, err := subscription.NewSubscription("alice", "https://push.example/abc", p256dh, auth)
func NewSubscription(userID, endpoint, p256dh, auth string) (*Subscription, error) {
	return RestoreSubscription(kernel.NewUUID(), userID, endpoint, p256dh, auth)
}

// RestoreSubscription rebuilds a stored subscription.
func RestoreSubscription(id kernel.UUID, userID, endpoint, p256dh, auth string) (*Subscription, error) {
	s := &Subscription{isConstructed: true}

	if err := errors.Join(
		s.setID(id),
		s.setUserID(userID),
		s.setEndpoint(endpoint),
		s.setKeys(p256dh, auth),
	); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Subscription) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrSubscriptionIsNotConstructed
	}
	return nil
}

func (s *Subscription) ID() kernel.UUID {
	return s.id
}

func (s *Subscription) UserID() string {
	return s.userID
}

// Endpoint is the push service URL the browser handed out.
func (s *Subscription) Endpoint() string {
	return s.endpoint
}

// P256dh is the client public key used to encrypt payloads.
func (s *Subscription) P256dh() string {
	return s.p256dh
}

// Auth is the client authentication secret.
func (s *Subscription) Auth() string {
	return s.auth
}

func (s *Subscription) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("id", err)
	}
	s.id = id
	return nil
}

func (s *Subscription) setUserID(userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errs.NewValueIsRequiredError("userID")
	}
	s.userID = userID
	return nil
}

func (s *Subscription) setEndpoint(endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return errs.NewValueIsRequiredError("endpoint")
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("endpoint", err)
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return errs.NewValueIsInvalidErrorWithCause("endpoint", fmt.Errorf("%q is not an absolute http(s) URL", endpoint))
	}

	s.endpoint = endpoint
	return nil
}

func (s *Subscription) setKeys(p256dh, auth string) error {
	var err error
	if strings.TrimSpace(p256dh) == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("p256dh"))
	}
	if strings.TrimSpace(auth) == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("auth"))
	}
	if err != nil {
		return err
	}

	s.p256dh = p256dh
	s.auth = auth
	return nil
}
