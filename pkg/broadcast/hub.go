package broadcast

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/nowplaying/pkg/logger"
	"github.com/dmitrymomot/nowplaying/pkg/metrics"
	"github.com/dmitrymomot/nowplaying/pkg/widget"
)

// Subscriber receives snapshots from a Hub.
type Subscriber struct {
	ID string

	hub    *Hub
	ch     chan widget.RenderState
	mu     sync.Mutex
	closed bool
}

// Updates delivers snapshots. It is closed when the subscription ends.
func (s *Subscriber) Updates() <-chan widget.RenderState {
	return s.ch
}

// Close ends the subscription. Safe to call more than once.
func (s *Subscriber) Close() error {
	if s.hub != nil {
		s.hub.remove(s)
	}
	s.close()
	return nil
}

func (s *Subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// offer replaces any undelivered snapshot with state.
func (s *Subscriber) offer(state widget.RenderState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- state
}

// Option configures a Hub.
type Option func(*Hub)

func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.log = l
		}
	}
}

// Hub is a widget.Surface that replays the latest snapshot to viewers.
type Hub struct {
	log *slog.Logger

	mu     sync.RWMutex
	subs   map[*Subscriber]struct{}
	last   widget.RenderState
	has    bool
	closed bool
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		log:  slog.Default(),
		subs: make(map[*Subscriber]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.With(logger.Component("broadcast"))
	return h
}

// Push stores state as the latest snapshot and offers it to every subscriber.
// Snapshots with the same visible content as the previous one are dropped.
func (h *Hub) Push(_ context.Context, state widget.RenderState) {
	h.mu.Lock()
	if h.closed || (h.has && h.last.SameContent(state)) {
		h.mu.Unlock()
		return
	}
	h.last, h.has = state, true
	subs := make([]*Subscriber, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		s.offer(state)
	}
}

// Last returns the latest snapshot.
func (h *Hub) Last() (widget.RenderState, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.has
}

// Subscribe registers a viewer. The latest snapshot, if any, is delivered
// right away. A subscriber of a closed hub gets an already closed channel.
func (h *Hub) Subscribe(ctx context.Context) *Subscriber {
	sub := &Subscriber{ID: uuid.NewString(), hub: h, ch: make(chan widget.RenderState, 1)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.close()
		return sub
	}
	h.subs[sub] = struct{}{}
	last, has := h.last, h.has
	h.mu.Unlock()

	metrics.ViewersCurrent.Inc()
	if has {
		sub.offer(last)
	}

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			_ = sub.Close()
		}()
	}
	return sub
}

// Len returns the number of live subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends all subscriptions. Subsequent pushes are ignored.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	subs := h.subs
	h.subs = make(map[*Subscriber]struct{})
	h.mu.Unlock()

	for s := range subs {
		s.close()
		metrics.ViewersCurrent.Dec()
	}
	return nil
}

func (h *Hub) remove(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		metrics.ViewersCurrent.Dec()
	}
}
