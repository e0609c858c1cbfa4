package widget

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/nowplaying/pkg/logger"
	"github.com/dmitrymomot/nowplaying/pkg/metrics"
	"github.com/dmitrymomot/nowplaying/pkg/render"
)

// Surface displays snapshots. Push must not block for long and must tolerate
// repeated identical snapshots.
type Surface interface {
	Push(ctx context.Context, state RenderState)
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(ctx context.Context, state RenderState)

func (f SurfaceFunc) Push(ctx context.Context, state RenderState) { f(ctx, state) }

// Option configures a Presenter.
type Option func(*Presenter)

func WithLogger(l *slog.Logger) Option {
	return func(p *Presenter) {
		if l != nil {
			p.log = l
		}
	}
}

// Presenter builds snapshots and pushes them to a surface.
type Presenter struct {
	surface Surface
	log     *slog.Logger

	mu   sync.Mutex
	seq  uint64
	last RenderState
}

func NewPresenter(surface Surface, opts ...Option) *Presenter {
	p := &Presenter{
		surface: surface,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With(logger.Component("presenter"))
	return p
}

// Present assembles a snapshot and pushes it once.
func (p *Presenter) Present(ctx context.Context, frame render.Frame, controls Controls) RenderState {
	p.mu.Lock()
	p.seq++
	state := Build(frame, controls)
	state.Seq = p.seq
	p.last = state
	p.mu.Unlock()

	if p.surface != nil {
		p.surface.Push(ctx, state)
	}
	metrics.PushesTotal.Inc()
	p.log.DebugContext(ctx, "snapshot pushed", slog.Uint64("seq", state.Seq), slog.String("title", state.Title))
	return state
}

// Last returns the most recently presented snapshot.
func (p *Presenter) Last() (RenderState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.seq > 0
}

// Build is the pure assembly step. Without a session all transport buttons
// are hidden regardless of controls.
func Build(frame render.Frame, controls Controls) RenderState {
	if !frame.HasSession {
		controls.PlayPause = Affordance{}
		controls.Next = Affordance{}
		controls.Prev = Affordance{}
	}
	return RenderState{
		HasSession:     frame.HasSession,
		Token:          frame.Token,
		App:            frame.App,
		Title:          frame.Title,
		Artist:         frame.Artist,
		Status:         frame.Status,
		Art:            frame.Art,
		ArtPlaceholder: frame.ArtPlaceholder,
		ArtIdentity:    frame.Identity,
		Background:     frame.Background,
		PlayIcon:       IconFor(frame.Status),
		Controls:       controls,
	}
}
