package webpush_test

import (
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"pizzatracker/internal/adapters/out/webpush"
	"pizzatracker/internal/core/domain/model/subscription"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	method        string
	authorization string
	encoding      string
	ttl           string
	urgency       string
	bodyLen       int64
}

func pushService(t *testing.T, status int) (*httptest.Server, func() capturedRequest) {
	t.Helper()

	var (
		mu  sync.Mutex
		got capturedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = capturedRequest{
			method:        r.Method,
			authorization: r.Header.Get("Authorization"),
			encoding:      r.Header.Get("Content-Encoding"),
			ttl:           r.Header.Get("TTL"),
			urgency:       r.Header.Get("Urgency"),
			bodyLen:       r.ContentLength,
		}
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	return srv, func() capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return got
	}
}

func browserSubscription(t *testing.T, endpoint string) *subscription.Subscription {
	t.Helper()

	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	secret := make([]byte, 16)
	_, err = rand.Read(secret)
	require.NoError(t, err)

	sub, err := subscription.NewSubscription(
		"alice",
		endpoint,
		base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
		base64.RawURLEncoding.EncodeToString(secret),
	)
	require.NoError(t, err)
	return sub
}

func newSender(t *testing.T) *webpush.Sender {
	t.Helper()
	privateKey, publicKey, err := webpush.GenerateKeys()
	require.NoError(t, err)
	return webpush.NewSender(webpush.Config{
		PublicKey:  publicKey,
		PrivateKey: privateKey,
		Subscriber: "ops@pizza.example.com",
	}, nil)
}

func TestSender_Send_Accepted(t *testing.T) {
	srv, captured := pushService(t, http.StatusCreated)

	err := newSender(t).Send(t.Context(), browserSubscription(t, srv.URL+"/push/abc"), []byte(`{"message":"hi"}`))

	require.NoError(t, err)
	req := captured()
	assert.Equal(t, http.MethodPost, req.method)
	assert.True(t, strings.HasPrefix(req.authorization, "vapid t="), req.authorization)
	assert.Equal(t, "aes128gcm", req.encoding)
	assert.Equal(t, "60", req.ttl)
	assert.Equal(t, "high", req.urgency)
	assert.Positive(t, req.bodyLen)
}

func TestSender_Send_Expired(t *testing.T) {
	srv, _ := pushService(t, http.StatusGone)

	err := newSender(t).Send(t.Context(), browserSubscription(t, srv.URL), []byte(`{}`))

	require.ErrorIs(t, err, webpush.ErrSubscriptionExpired)
}

func TestSender_Send_Rejected(t *testing.T) {
	srv, _ := pushService(t, http.StatusTooManyRequests)

	err := newSender(t).Send(t.Context(), browserSubscription(t, srv.URL), []byte(`{}`))

	require.ErrorIs(t, err, webpush.ErrPushRejected)
}

func TestSender_Send_Unreachable(t *testing.T) {
	srv, _ := pushService(t, http.StatusCreated)
	endpoint := srv.URL
	srv.Close()

	err := newSender(t).Send(t.Context(), browserSubscription(t, endpoint), []byte(`{}`))

	require.Error(t, err)
}

func TestSender_Send_InvalidSubscription(t *testing.T) {
	err := newSender(t).Send(t.Context(), &subscription.Subscription{}, []byte(`{}`))

	require.ErrorIs(t, err, subscription.ErrSubscriptionIsNotConstructed)
}
