// Package rabbitmq relays order status changes to other services through a
// fanout exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"pizzatracker/internal/core/domain/model/kernel"
	"pizzatracker/internal/core/domain/model/tracking"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// DefaultExchange is the fanout exchange status changes are published to.
	DefaultExchange = "order_status"

	// DefaultConfirmTimeout bounds how long one publish waits for the broker.
	DefaultConfirmTimeout = 5 * time.Second
)

// ErrPublishNacked is returned when the broker refuses a message.
var ErrPublishNacked = errors.New("publish NACK from broker")

// Confirmation is the broker's pending answer to one published message.
// *amqp.DeferredConfirmation implements it.
type Confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

// Channel is the part of an AMQP channel the relay uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Confirm(noWait bool) error
	PublishWithDeferredConfirmWithContext(
		ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing,
	) (Confirmation, error)
	Close() error
}

// amqpChannel adapts *amqp.Channel to Channel.
type amqpChannel struct {
	*amqp.Channel
}

func (c amqpChannel) PublishWithDeferredConfirmWithContext(
	ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing,
) (Confirmation, error) {
	confirmation, err := c.Channel.PublishWithDeferredConfirmWithContext(ctx, exchange, key, mandatory, immediate, msg)
	if err != nil {
		return nil, err
	}
	if confirmation == nil {
		return nil, errors.New("channel is not in confirm mode")
	}
	return confirmation, nil
}

// Option customizes a StatusRelay.
type Option func(*StatusRelay)

// WithConfirmTimeout sets how long a publish waits for its confirmation.
func WithConfirmTimeout(d time.Duration) Option {
	return func(r *StatusRelay) {
		if d > 0 {
			r.confirmTimeout = d
		}
	}
}

// StatusMessage is the JSON body of a relayed status change.
type StatusMessage struct {
	OrderID   int64           `json:"order_id"`
	UserID    string          `json:"user_id"`
	Status    string          `json:"status"`
	Markers   []MarkerMessage `json:"markers"`
	Timestamp time.Time       `json:"timestamp"`
}

// MarkerMessage is a map marker of a relayed status change.
type MarkerMessage struct {
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// StatusRelay publishes every status change it receives to the exchange and
// waits for the broker's confirmation of that message. Publishes do not wait
// for each other.
type StatusRelay struct {
	ch             Channel
	conn           io.Closer
	exchange       string
	confirmTimeout time.Duration
	now            func() time.Time
}

// Dial connects to the broker and returns a relay on a fresh channel.
func Dial(url, exchange string, opts ...Option) (*StatusRelay, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	relay, err := NewStatusRelay(amqpChannel{ch}, exchange, opts...)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	relay.conn = conn
	return relay, nil
}

// NewStatusRelay declares the durable fanout exchange and enables publisher
// confirms on ch.
func NewStatusRelay(ch Channel, exchange string, opts ...Option) (*StatusRelay, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("confirm mode: %w", err)
	}

	r := &StatusRelay{
		ch:             ch,
		exchange:       exchange,
		confirmTimeout: DefaultConfirmTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Publish sends the snapshot to the exchange and waits for its confirmation,
// at most the confirm timeout. A confirmation arriving after that is discarded
// with its message.
func (r *StatusRelay) Publish(ctx context.Context, group tracking.GroupID, snapshot tracking.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(newStatusMessage(snapshot, r.now().UTC()))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.confirmTimeout)
	defer cancel()

	confirmation, err := r.ch.PublishWithDeferredConfirmWithContext(ctx, r.exchange, "", false, false, amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		MessageId:     kernel.NewUUID().String(),
		CorrelationId: group.String(),
		Timestamp:     r.now().UTC(),
		Headers: amqp.Table{
			"x-source": "pizzatracker",
			"x-status": snapshot.State().String(),
		},
		Body: body,
	})
	if err != nil {
		return fmt.Errorf("publish status of order %d: %w", snapshot.Order().ID(), err)
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("await confirmation for order %d: %w", snapshot.Order().ID(), err)
	}
	if !acked {
		return fmt.Errorf("order %d: %w", snapshot.Order().ID(), ErrPublishNacked)
	}
	return nil
}

// Close closes the channel and, when the relay dialed it, the connection.
func (r *StatusRelay) Close() error {
	err := r.ch.Close()
	if r.conn != nil {
		err = errors.Join(err, r.conn.Close())
	}
	return err
}

func newStatusMessage(snapshot tracking.Snapshot, at time.Time) StatusMessage {
	markers := make([]MarkerMessage, 0, len(snapshot.Markers()))
	for _, m := range snapshot.Markers() {
		markers = append(markers, MarkerMessage{
			Description: m.Description,
			Latitude:    m.Latitude,
			Longitude:   m.Longitude,
		})
	}

	return StatusMessage{
		OrderID:   snapshot.Order().ID(),
		UserID:    snapshot.Order().UserID(),
		Status:    snapshot.State().String(),
		Markers:   markers,
		Timestamp: at,
	}
}
