package commands

import (
	"context"
	"fmt"
	"time"

	"pizzatracker/internal/core/domain/model/kernel"
	"pizzatracker/internal/core/domain/model/order"
	"pizzatracker/internal/core/ports"
)

// PlaceOrderCommandHandler persists a new order and hands it to the tracking queue.
//
// The tracking request is submitted only after the transaction commits, so the
// tracker's fresh read always finds the order. When the queue is full Handle
// blocks until a slot frees up or the caller's context ends.
//
// Example:
//
//	handler := NewPlaceOrderCommandHandler(uowFactory, queue, dispatchLocation, time.Now)
//	orderID, err := handler.Handle(ctx, cmd)
type PlaceOrderCommandHandler struct {
	uowFactory       OrderUoWFactory
	queue            ports.TrackingEnqueuer
	dispatchLocation kernel.Location
	now              func() time.Time
}

// NewPlaceOrderCommandHandler creates a handler for order placement.
// dispatchLocation is used for orders submitted without a coordinate.
func NewPlaceOrderCommandHandler(
	uowFactory OrderUoWFactory,
	queue ports.TrackingEnqueuer,
	dispatchLocation kernel.Location,
	now func() time.Time,
) PlaceOrderCommandHandler {
	if now == nil {
		now = time.Now
	}
	return PlaceOrderCommandHandler{
		uowFactory:       uowFactory,
		queue:            queue,
		dispatchLocation: dispatchLocation,
		now:              now,
	}
}

// Handle places the order and returns its store-assigned id.
// If the order was stored but could not be queued, the id is returned with the
// error; the recovery job picks such orders up later.
func (h *PlaceOrderCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (int64, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	location := h.dispatchLocation
	if cmd.Location() != nil {
		location = *cmd.Location()
	}

	placed, err := order.NewOrder(cmd.UserID(), h.now().UTC(), cmd.Address(), location, cmd.Items())
	if err != nil {
		return 0, err
	}

	saved, err := h.persist(ctx, placed)
	if err != nil {
		return 0, err
	}

	req := ports.TrackingRequest{OrderID: saved.ID(), UserID: saved.UserID()}
	if err = h.queue.Enqueue(ctx, req); err != nil {
		return saved.ID(), fmt.Errorf("order %d placed but not queued for tracking: %w", saved.ID(), err)
	}

	return saved.ID(), nil
}

func (h *PlaceOrderCommandHandler) persist(ctx context.Context, o *order.Order) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	saved, err := uow.OrderRepository().Add(ctx, o)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return saved, nil
}
