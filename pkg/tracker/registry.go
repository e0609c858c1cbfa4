package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/nowplaying/pkg/logger"
	"github.com/dmitrymomot/nowplaying/pkg/media"
	"github.com/dmitrymomot/nowplaying/pkg/metrics"
)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// Registry owns the tracked session set and the active selection.
type Registry struct {
	source media.Source
	mux    *Multiplexer
	log    *slog.Logger

	mu      sync.RWMutex
	tracked []media.Session
	active  media.Session
}

// NewRegistry creates a registry backed by source. mux is synced on every refresh.
func NewRegistry(source media.Source, mux *Multiplexer, opts ...Option) *Registry {
	r := &Registry{
		source: source,
		mux:    mux,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.mux == nil {
		r.mux = NewMultiplexer(nil, WithMultiplexerLogger(r.log))
	}
	r.log = r.log.With(logger.Component("registry"))
	return r
}

// Refresh queries the source and applies the result. On failure the tracked
// set is left as it was and the error is wrapped with ErrRefreshFailed.
// It reports whether the active token changed.
func (r *Registry) Refresh(ctx context.Context) (bool, error) {
	sessions, err := safeQuery(ctx, r.source)
	if err != nil {
		result := metrics.ResultError
		if errors.Is(err, media.ErrPermissionDenied) {
			result = metrics.ResultDenied
		}
		metrics.RefreshesTotal.WithLabelValues(result).Inc()
		return false, errors.Join(ErrRefreshFailed, err)
	}
	metrics.RefreshesTotal.WithLabelValues(metrics.ResultOK).Inc()
	return r.Apply(ctx, sessions), nil
}

// Apply replaces the tracked set with a host-supplied list and recomputes
// the selection. Nil handles and repeated tokens (after the first) are
// skipped. It reports whether the active token changed.
func (r *Registry) Apply(ctx context.Context, sessions []media.Session) bool {
	tracked := make([]media.Session, 0, len(sessions))
	seen := make(map[media.Token]struct{}, len(sessions))
	for _, s := range sessions {
		if s == nil {
			continue
		}
		token, ok := safeToken(s)
		if !ok {
			r.log.WarnContext(ctx, "skipping session with unreadable token")
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		tracked = append(tracked, s)
	}

	active := Select(tracked)

	r.mux.Sync(ctx, tracked)
	var activeToken media.Token
	if active != nil {
		activeToken = active.Token()
	}
	r.mux.Select(activeToken)

	r.mu.Lock()
	prev := r.active
	r.tracked = tracked
	r.active = active
	r.mu.Unlock()

	metrics.TrackedSessions.Set(float64(len(tracked)))

	changed := tokenOf(prev) != activeToken
	if changed {
		metrics.ActiveSwitchesTotal.Inc()
		r.log.DebugContext(ctx, "active session changed",
			logger.Token(activeToken), logger.Count(len(tracked)))
	}
	return changed
}

// Active returns the selected session or nil.
func (r *Registry) Active() media.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Tracked returns a copy of the tracked sessions in host order.
func (r *Registry) Tracked() []media.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]media.Session(nil), r.tracked...)
}

// Multiplexer returns the multiplexer synced by this registry.
func (r *Registry) Multiplexer() *Multiplexer {
	return r.mux
}

// Clear forgets all sessions and releases their subscriptions.
func (r *Registry) Clear() {
	r.mux.Clear()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracked = nil
	r.active = nil
}

// Select applies the ranking rule: the first playing session in list order,
// otherwise the first session, otherwise nil. Ties between several playing
// sessions follow host order.
func Select(sessions []media.Session) media.Session {
	for _, s := range sessions {
		if SafeStatus(s) == media.StatusPlaying {
			return s
		}
	}
	if len(sessions) > 0 {
		return sessions[0]
	}
	return nil
}

func tokenOf(s media.Session) media.Token {
	if s == nil {
		return ""
	}
	return s.Token()
}
