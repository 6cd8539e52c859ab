// Package ws pushes order tracking snapshots to browsers over websockets.
package ws

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"pizzatracker/internal/core/domain/model/kernel"
	"pizzatracker/internal/core/domain/model/tracking"
)

// Connection is a live client that can receive tracking snapshots.
type Connection interface {
	ID() kernel.UUID
	SendSnapshot(ctx context.Context, snapshot tracking.Snapshot) error
}

// Hub keeps the group membership of live connections and fans snapshots out
// to every member of a group. Group ids have the form "{orderId}:{userId}".
//
// Membership changes take the write lock; Publish only reads it and delivers
// outside the lock so a slow client never blocks joins or leaves.
type Hub struct {
	mu          sync.RWMutex
	groups      map[tracking.GroupID]map[kernel.UUID]Connection
	memberships map[kernel.UUID]map[tracking.GroupID]struct{}
}

// NewHub returns a hub with no groups.
func NewHub() *Hub {
	return &Hub{
		groups:      make(map[tracking.GroupID]map[kernel.UUID]Connection),
		memberships: make(map[kernel.UUID]map[tracking.GroupID]struct{}),
	}
}

// Subscribe adds the connection to the group. Repeated calls are no-ops.
func (h *Hub) Subscribe(conn Connection, group tracking.GroupID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[group]
	if !ok {
		members = make(map[kernel.UUID]Connection)
		h.groups[group] = members
	}
	members[conn.ID()] = conn

	joined, ok := h.memberships[conn.ID()]
	if !ok {
		joined = make(map[tracking.GroupID]struct{})
		h.memberships[conn.ID()] = joined
	}
	joined[group] = struct{}{}
}

// Unsubscribe removes the connection from one group.
func (h *Hub) Unsubscribe(connID kernel.UUID, group tracking.GroupID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leave(connID, group)
}

// UnsubscribeAll removes the connection from every group it joined.
// It is called when the connection closes.
func (h *Hub) UnsubscribeAll(connID kernel.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for group := range h.memberships[connID] {
		h.leave(connID, group)
	}
	delete(h.memberships, connID)
}

func (h *Hub) leave(connID kernel.UUID, group tracking.GroupID) {
	if members, ok := h.groups[group]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
	if joined, ok := h.memberships[connID]; ok {
		delete(joined, group)
		if len(joined) == 0 {
			delete(h.memberships, connID)
		}
	}
}

// Publish sends the snapshot to every current member of the group.
// A group with no members is not an error. Delivery failures are joined and
// returned; membership is left untouched, the reader loop of a broken
// connection removes it on close.
func (h *Hub) Publish(ctx context.Context, group tracking.GroupID, snapshot tracking.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	h.mu.RLock()
	members := make([]Connection, 0, len(h.groups[group]))
	for _, conn := range h.groups[group] {
		members = append(members, conn)
	}
	h.mu.RUnlock()

	var errList []error
	for _, conn := range members {
		if err := conn.SendSnapshot(ctx, snapshot); err != nil {
			errList = append(errList, fmt.Errorf("connection %s: %w", conn.ID(), err))
		}
	}

	return errors.Join(errList...)
}

// Members returns the ids of the connections in the group, sorted.
func (h *Hub) Members(group tracking.GroupID) []kernel.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]kernel.UUID, 0, len(h.groups[group]))
	for id := range h.groups[group] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// Groups returns the number of groups with at least one member.
func (h *Hub) Groups() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.groups)
}
