package app

import (
	"sync"

	"quiz-session-service/internal/domain"
)

// backlog is the per-subscriber buffer; a burst up to this size is retained
// for a slow reader before the oldest buffered events start being dropped.
const backlog = 1000

// Hub maps live session ids to fanout channels. Channels are created on
// first reference and shared by every connection for that session.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]*fanout
}

type fanout struct {
	mu   sync.Mutex
	subs map[chan domain.Event]struct{}
}

func NewHub() *Hub {
	return &Hub{channels: make(map[string]*fanout)}
}

// Subscribe returns a private receiver for the session's events and a cancel
// function the caller must invoke to avoid leaks.
func (h *Hub) Subscribe(sessionID string) (<-chan domain.Event, func()) {
	f := h.channel(sessionID)
	ch := make(chan domain.Event, backlog)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subs[ch]; ok {
			delete(f.subs, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers ev to every current subscriber of the session. A publish
// only fails when nobody is subscribed; in that case the channel is replaced
// and the send retried once before giving up. Delivery is best-effort: state
// is durably written before any publish, so clients recover by re-reading.
func (h *Hub) Publish(sessionID string, ev domain.Event) error {
	if err := h.channel(sessionID).send(ev); err == nil {
		return nil
	}
	return h.reset(sessionID).send(ev)
}

func (h *Hub) channel(sessionID string) *fanout {
	h.mu.RLock()
	f, ok := h.channels[sessionID]
	h.mu.RUnlock()
	if ok {
		return f
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if f, ok := h.channels[sessionID]; ok {
		return f
	}
	f = &fanout{subs: make(map[chan domain.Event]struct{})}
	h.channels[sessionID] = f
	return f
}

func (h *Hub) reset(sessionID string) *fanout {
	h.mu.Lock()
	defer h.mu.Unlock()
	f := &fanout{subs: make(map[chan domain.Event]struct{})}
	h.channels[sessionID] = f
	return f
}

func (f *fanout) send(ev domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.subs) == 0 {
		return domain.ErrNoSubscribers
	}
	for ch := range f.subs {
		select {
		case ch <- ev:
		default:
			// Full buffer: drop the oldest pending event for this lagging
			// subscriber rather than stall the publisher.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
	return nil
}
