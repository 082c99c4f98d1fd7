// Package realtime implements the change-notification feed: row-level
// insert/update events published by the write path and fanned out to
// scoped subscriptions (a table name plus an optional row key).
package realtime

import (
	"sync"
)

type Action string

const (
	ActionInsert Action = "INSERT"
	ActionUpdate Action = "UPDATE"
)

// Event is one row-level change as delivered to subscribers.
type Event struct {
	Table   string      `json:"table"`
	Action  Action      `json:"action"`
	Key     string      `json:"key,omitempty"`
	Payload interface{} `json:"payload"`
}

// Subscription is a scoped handle onto the feed. Events arrive on C.
// Callers must Unsubscribe when done; after that C is closed.
type Subscription struct {
	C chan Event

	hub   *Hub
	id    uint64
	table string
	key   string
	once  sync.Once
}

// Unsubscribe releases the subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.remove(s.id)
		close(s.C)
	})
}

// Hub fans events out to matching subscriptions.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]*Subscription)}
}

// Subscribe registers interest in a table. An empty key matches every
// row of the table; a non-empty key only matches events published with
// the same key (a conversation id, a user id).
func (h *Hub) Subscribe(table, key string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		C:     make(chan Event, 16),
		hub:   h,
		id:    h.nextID,
		table: table,
		key:   key,
	}
	h.subs[sub.id] = sub
	return sub
}

// Publish delivers ev to every matching subscription. Slow subscribers
// are skipped rather than blocked on; a dropped badge refresh is
// recoverable, a stalled write path is not.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if sub.table != ev.Table {
			continue
		}
		if sub.key != "" && sub.key != ev.Key {
			continue
		}
		select {
		case sub.C <- ev:
		default:
		}
	}
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// SubscriberCount reports active subscriptions, used by tests and the
// health endpoint.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
