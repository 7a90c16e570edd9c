// Package broadcast provides the in-process publish/subscribe hub that
// fans timer events out to user and hive channels.
package broadcast

import (
	"log/slog"
	"sync"

	"github.com/focushive/hivetimer/internal/domain"
)

const defaultBufferSize = 16

// Subscription is one listener on a channel. Events arrive on C in the
// order they were published; a subscriber that stops draining loses events
// rather than stalling publishers.
type Subscription struct {
	C       <-chan domain.TimerEvent
	channel string
	ch      chan domain.TimerEvent
	hub     *Hub
	once    sync.Once
}

// Close detaches the subscription from the hub.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.unsubscribe(s)
		close(s.ch)
	})
}

// Hub routes timer events to their destination channels. Publish never
// blocks: each subscriber has a buffered queue and the event is dropped
// for subscribers whose queue is full, so delivery to one slow listener
// cannot delay a timer command or reorder events for anyone else.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]map[*Subscription]struct{}
	closed  bool
	bufSize int
	logger  *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:    make(map[string]map[*Subscription]struct{}),
		bufSize: defaultBufferSize,
		logger:  logger,
	}
}

// Subscribe registers a listener on a channel key, usually from
// domain.UserChannel or domain.HiveChannel. The caller must Close the
// subscription when done.
func (h *Hub) Subscribe(channel string) *Subscription {
	ch := make(chan domain.TimerEvent, h.bufSize)
	sub := &Subscription{C: ch, channel: channel, ch: ch, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		// Hand back a closed subscription so the caller's receive loop
		// terminates immediately.
		sub.once.Do(func() { close(ch) })
		return sub
	}
	set, ok := h.subs[channel]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[channel] = set
	}
	set[sub] = struct{}{}
	return sub
}

// Publish delivers the event to every subscriber of its destination
// channels. Safe for concurrent use; never blocks.
func (h *Hub) Publish(event domain.TimerEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	for _, channel := range event.Destinations() {
		for sub := range h.subs[channel] {
			select {
			case sub.ch <- event:
			default:
				h.logger.Warn("dropping event for slow subscriber",
					"channel", channel, "event", event.Type, "session_id", event.SessionID)
			}
		}
	}
}

// SubscriberCount reports how many listeners a channel has.
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[channel])
}

// Close detaches all subscriptions and rejects further publishes.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	all := h.subs
	h.subs = make(map[string]map[*Subscription]struct{})
	h.mu.Unlock()

	for _, set := range all {
		for sub := range set {
			sub.once.Do(func() { close(sub.ch) })
		}
	}
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[sub.channel]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.channel)
		}
	}
}
