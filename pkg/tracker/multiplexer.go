package tracker

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/nowplaying/pkg/logger"
	"github.com/dmitrymomot/nowplaying/pkg/media"
	"github.com/dmitrymomot/nowplaying/pkg/metrics"
)

// Sink receives per-session events from host callbacks. It must not block.
type Sink func(media.SessionEvent)

// MultiplexerOption configures a Multiplexer.
type MultiplexerOption func(*Multiplexer)

// WithMultiplexerLogger sets the logger.
func WithMultiplexerLogger(l *slog.Logger) MultiplexerOption {
	return func(m *Multiplexer) {
		if l != nil {
			m.log = l
		}
	}
}

type record struct {
	session     media.Session
	unsubscribe func()
	subID       uuid.UUID
	lifecycle   *Lifecycle
	status      media.Status
	actions     media.Actions
}

func (r *record) subscribed() bool { return r.unsubscribe != nil }

// Multiplexer maps session tokens to exactly one live host subscription.
type Multiplexer struct {
	sink Sink
	log  *slog.Logger

	mu      sync.Mutex
	records map[media.Token]*record
}

// NewMultiplexer creates a multiplexer that forwards host events to sink.
func NewMultiplexer(sink Sink, opts ...MultiplexerOption) *Multiplexer {
	m := &Multiplexer{
		sink:    sink,
		log:     slog.Default(),
		records: make(map[media.Token]*record),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.sink == nil {
		m.sink = func(media.SessionEvent) {}
	}
	m.log = m.log.With(logger.Component("multiplexer"))
	return m
}

// Sync diffs the records against sessions: absent tokens are unsubscribed and
// dropped, new tokens are subscribed, present ones are left untouched except
// that a previously failed subscription is retried. sessions must not contain
// duplicate tokens.
func (m *Multiplexer) Sync(ctx context.Context, sessions []media.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	want := make(map[media.Token]media.Session, len(sessions))
	for _, s := range sessions {
		want[s.Token()] = s
	}

	for token, rec := range m.records {
		if _, ok := want[token]; ok {
			continue
		}
		if err := safeUnsubscribe(rec.unsubscribe); err != nil {
			m.log.WarnContext(ctx, "unsubscribe failed", logger.Token(token), logger.Error(err))
		}
		if err := rec.lifecycle.Fire(EventUnsubscribe); err != nil {
			m.log.DebugContext(ctx, "lifecycle", logger.Token(token), logger.Error(err))
		}
		delete(m.records, token)
	}

	for _, s := range sessions {
		token := s.Token()
		rec, ok := m.records[token]
		if !ok {
			rec = &record{
				session:   s,
				lifecycle: NewLifecycle(),
				status:    SafeStatus(s),
				actions:   SafeActions(s),
			}
			m.records[token] = rec
		}
		if !rec.subscribed() {
			m.subscribe(ctx, token, rec)
		}
	}
}

// Must be called with lock held.
func (m *Multiplexer) subscribe(ctx context.Context, token media.Token, rec *record) {
	sink := m.sink
	cb := func(ev media.SessionEvent) {
		ev.Token = token
		sink(ev)
	}

	unsubscribe, err := safeSubscribe(rec.session, cb)
	if err != nil {
		metrics.SubscriptionsTotal.WithLabelValues(metrics.ResultError).Inc()
		m.log.WarnContext(ctx, "session subscription failed, relying on refresh",
			logger.Token(token), logger.Error(err))
		return
	}
	if unsubscribe == nil {
		unsubscribe = func() {}
	}

	rec.unsubscribe = unsubscribe
	rec.subID = uuid.New()
	if err := rec.lifecycle.Fire(EventSubscribe); err != nil {
		m.log.DebugContext(ctx, "lifecycle", logger.Token(token), logger.Error(err))
	}
	metrics.SubscriptionsTotal.WithLabelValues(metrics.ResultOK).Inc()
	m.log.DebugContext(ctx, "session subscribed",
		logger.Token(token), slog.String("subscription_id", rec.subID.String()))
}

// Observe records ev against its session and returns the status known before it.
// ok is false for tokens that are not tracked.
func (m *Multiplexer) Observe(ev media.SessionEvent) (prev media.Status, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[ev.Token]
	if !ok {
		return media.StatusUnknown, false
	}
	prev = rec.status
	if ev.Kind == media.EventStatus {
		rec.status = ev.Status
		rec.actions = SafeActions(rec.session)
	}
	return prev, true
}

// Select marks token as the active session and every other record inactive.
// An empty token deactivates all.
func (m *Multiplexer) Select(token media.Token) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for t, rec := range m.records {
		ev, target := EventDeactivate, StateInactive
		if t == token {
			ev, target = EventActivate, StateActive
		}
		if rec.lifecycle.Current() == target || !rec.lifecycle.CanFire(ev) {
			continue
		}
		_ = rec.lifecycle.Fire(ev)
	}
}

// State returns the lifecycle state of token.
func (m *Multiplexer) State(token media.Token) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[token]
	if !ok {
		return StateUnsubscribed, false
	}
	return rec.lifecycle.Current(), true
}

// Subscribed reports whether token holds a live host subscription.
func (m *Multiplexer) Subscribed(token media.Token) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[token]
	return ok && rec.subscribed()
}

// Actions returns the last known actions of token.
func (m *Multiplexer) Actions(token media.Token) (media.Actions, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[token]
	if !ok {
		return media.ActionsNone, false
	}
	return rec.actions, true
}

// Tokens returns the tracked tokens, sorted.
func (m *Multiplexer) Tokens() []media.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	tokens := make([]media.Token, 0, len(m.records))
	for t := range m.records {
		tokens = append(tokens, t)
	}
	slices.Sort(tokens)
	return tokens
}

func (m *Multiplexer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// Clear unsubscribes every record and empties the map. Safe to call repeatedly.
func (m *Multiplexer) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for token, rec := range m.records {
		if err := safeUnsubscribe(rec.unsubscribe); err != nil {
			m.log.Warn("unsubscribe failed", logger.Token(token), logger.Error(err))
		}
		_ = rec.lifecycle.Fire(EventUnsubscribe)
	}
	clear(m.records)
}
