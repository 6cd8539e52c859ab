package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"pizzatracker/internal/core/application/usecases/queries"
	"pizzatracker/internal/core/domain/model/kernel"
	"pizzatracker/internal/core/domain/model/tracking"
	"pizzatracker/internal/core/domain/services"
	"pizzatracker/internal/pkg/errs"

	"golang.org/x/net/websocket"
)

const (
	maxFramePayloadBytes   = 16 * 1024
	maxFrameBytes          = maxFramePayloadBytes + 1024
	maxFramesPerSecond     = 40
	maxDecodeErrorsPerConn = 3
	writeTimeout           = 10 * time.Second
)

// UserHeader carries the caller identity on the upgrade request.
const UserHeader = "X-User-Id"

type userIDContextKey struct{}

// WithUserID stores the authenticated user id in the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

// UserIDFromContext returns the user id stored by WithUserID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey{}).(string)
	return userID, ok && userID != ""
}

// StatusQuery computes the current snapshot of an order for its owner.
type StatusQuery interface {
	Handle(ctx context.Context, query queries.GetOrderWithStatusQuery) (tracking.Snapshot, error)
}

// Handler upgrades HTTP requests to tracking websockets.
type Handler struct {
	hub    *Hub
	status StatusQuery
	logger *slog.Logger
}

// NewHandler serves tracking connections, answering snapshot requests via status.
func NewHandler(hub *Hub, status StatusQuery, logger *slog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		status: status,
		logger: logger.With("component", "ws"),
	}
}

// ServeHTTP authenticates the caller before the upgrade. The identity comes
// from the request context when a middleware already resolved it, otherwise
// from the X-User-Id header.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		userID = strings.TrimSpace(r.Header.Get(UserHeader))
	}
	if userID == "" {
		h.logger.WarnContext(r.Context(), "Websocket unauthorized", "remote", r.RemoteAddr)
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	r = r.WithContext(WithUserID(r.Context(), userID))
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveConn(conn, userID)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveConn(conn *websocket.Conn, userID string) {
	ctx := conn.Request().Context()
	peer := newPeer(conn, h.logger)
	logger := h.logger.With("connection", peer.ID().String(), "user_id", userID)
	logger.DebugContext(ctx, "Websocket connected")

	defer func() {
		h.hub.UnsubscribeAll(peer.ID())
		_ = conn.Close()
		logger.DebugContext(ctx, "Websocket disconnected")
	}()

	// Oversized frames are refused from their header, before the body is read.
	conn.MaxPayloadBytes = maxFrameBytes
	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var frame Frame
		if err := websocket.JSON.Receive(conn, &frame); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) ||
				ctx.Err() != nil {
				return
			}
			decodeErrors++
			message := "invalid frame payload"
			if errors.Is(err, websocket.ErrFrameTooLarge) {
				message = "frame too large"
			}
			_ = peer.writeError("", CodeInvalidArgument, message)
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			_ = peer.writeError(frame.RequestID, CodeInvalidArgument, "payload too large")
			continue
		}

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			_ = peer.writeError(frame.RequestID, CodeResourceExhausted, "rate limit exceeded")
			return
		}

		switch frame.Type {
		case MethodStartTracking:
			h.startTracking(ctx, peer, userID, frame)
		case MethodStopTracking:
			h.stopTracking(peer, userID, frame)
		default:
			_ = peer.writeError(frame.RequestID, CodeInvalidArgument, "unsupported frame type")
		}
	}
}

// startTracking joins the order's group and sends the current snapshot right
// away, so a client that connects after a transition still sees the state.
func (h *Handler) startTracking(ctx context.Context, peer *peer, userID string, frame Frame) {
	orderID, ok := h.decodeOrderID(peer, frame)
	if !ok {
		return
	}

	query, err := queries.NewGetOrderWithStatusQuery(orderID, userID)
	if err != nil {
		_ = peer.writeError(frame.RequestID, CodeInvalidArgument, err.Error())
		return
	}

	snapshot, err := h.status.Handle(ctx, query)
	if err != nil {
		code, message := errorCode(err)
		if code == CodeUnavailable {
			h.logger.ErrorContext(ctx, "Failed to load order for tracking", "order_id", orderID, "error", err)
		}
		_ = peer.writeError(frame.RequestID, code, message)
		return
	}

	group := snapshot.GroupID()
	h.hub.Subscribe(peer, group)
	_ = peer.writeFrame(Frame{
		Type:      EventAck,
		RequestID: frame.RequestID,
		Payload:   mustJSON(h.logger, AckPayload{OrderID: orderID, GroupID: group.String()}),
	})
	if err = peer.SendSnapshot(ctx, snapshot); err != nil {
		h.logger.WarnContext(ctx, "Failed to send initial snapshot", "group", group.String(), "error", err)
	}
}

func (h *Handler) stopTracking(peer *peer, userID string, frame Frame) {
	orderID, ok := h.decodeOrderID(peer, frame)
	if !ok {
		return
	}

	group := tracking.NewGroupID(orderID, userID)
	h.hub.Unsubscribe(peer.ID(), group)
	_ = peer.writeFrame(Frame{
		Type:      EventAck,
		RequestID: frame.RequestID,
		Payload:   mustJSON(h.logger, AckPayload{OrderID: orderID, GroupID: group.String()}),
	})
}

func (h *Handler) decodeOrderID(peer *peer, frame Frame) (int64, bool) {
	var payload TrackingPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = peer.writeError(frame.RequestID, CodeInvalidArgument, "invalid tracking payload")
		return 0, false
	}
	if payload.OrderID <= 0 {
		_ = peer.writeError(frame.RequestID, CodeInvalidArgument, "orderId is required")
		return 0, false
	}
	return payload.OrderID, true
}

func errorCode(err error) (string, string) {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return CodeNotFound, "order not found"
	case errors.Is(err, services.ErrInvalidOrder):
		return CodeFailedPrecondition, "order cannot be tracked"
	default:
		return CodeUnavailable, "tracking is temporarily unavailable"
	}
}

// peer serializes writes to one websocket connection and drops snapshots that
// would move a group backwards on this connection.
type peer struct {
	id     kernel.UUID
	conn   *websocket.Conn
	logger *slog.Logger

	mu      sync.Mutex
	encoder *json.Encoder
	last    map[tracking.GroupID]tracking.State
}

func newPeer(conn *websocket.Conn, logger *slog.Logger) *peer {
	return &peer{
		id:      kernel.NewUUID(),
		conn:    conn,
		logger:  logger,
		encoder: json.NewEncoder(conn),
		last:    make(map[tracking.GroupID]tracking.State),
	}
}

func (p *peer) ID() kernel.UUID {
	return p.id
}

// SendSnapshot writes an orderStatusChanged frame.
func (p *peer) SendSnapshot(_ context.Context, snapshot tracking.Snapshot) error {
	group := snapshot.GroupID()

	p.mu.Lock()
	defer p.mu.Unlock()

	if snapshot.State() < p.last[group] {
		return nil
	}
	if err := p.encodeLocked(Frame{
		Type:    EventOrderStatusChanged,
		Payload: mustJSON(p.logger, NewStatusView(snapshot)),
	}); err != nil {
		return err
	}
	p.last[group] = snapshot.State()
	return nil
}

func (p *peer) writeFrame(frame Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.encodeLocked(frame)
}

func (p *peer) writeError(requestID, code, message string) error {
	return p.writeFrame(Frame{
		Type:      EventError,
		RequestID: requestID,
		Payload:   mustJSON(p.logger, ErrorPayload{Code: code, Message: message}),
	})
}

func (p *peer) encodeLocked(frame Frame) error {
	if p.conn != nil {
		_ = p.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	}
	return p.encoder.Encode(frame)
}
