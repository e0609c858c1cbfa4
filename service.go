package nowplaying

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/nowplaying/pkg/command"
	"github.com/dmitrymomot/nowplaying/pkg/logger"
	"github.com/dmitrymomot/nowplaying/pkg/media"
	"github.com/dmitrymomot/nowplaying/pkg/palette"
	"github.com/dmitrymomot/nowplaying/pkg/render"
	"github.com/dmitrymomot/nowplaying/pkg/tracker"
	"github.com/dmitrymomot/nowplaying/pkg/widget"
)

type runState int

const (
	stateIdle runState = iota
	stateRunning
	stateClosed
)

// Service is the session tracker and render pipeline.
type Service struct {
	source    media.Source
	log       *slog.Logger
	poll      time.Duration
	queue     *eventQueue
	registry  *tracker.Registry
	cache     *render.Cache
	extractor *palette.Extractor
	router    *command.Router
	presenter *widget.Presenter

	mu           sync.Mutex
	state        runState
	closeOnce    sync.Once
	closing      chan struct{}
	teardownOnce sync.Once
	done         chan struct{}
	unsubscribe  func()
}

// New creates a service reading sessions from source and pushing snapshots
// to surface. The palette worker starts immediately; call Close to stop it.
func New(source media.Source, surface widget.Surface, opts ...Option) *Service {
	o := &options{log: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	s := &Service{
		source:  source,
		log:     o.log.With(logger.Component("service")),
		poll:    o.pollInterval,
		queue:   newEventQueue(),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}

	mux := tracker.NewMultiplexer(s.postSessionEvent, tracker.WithMultiplexerLogger(o.log))
	s.registry = tracker.NewRegistry(source, mux, tracker.WithLogger(o.log))
	s.cache = render.NewCache(append([]render.Option{render.WithLogger(o.log)}, o.render...)...)
	s.extractor = palette.NewExtractor(append([]palette.Option{palette.WithLogger(o.log)}, o.palette...)...)
	s.router = command.NewRouter(loopSessions{s}, append([]command.Option{command.WithLogger(o.log)}, o.router...)...)
	s.presenter = widget.NewPresenter(surface, widget.WithLogger(o.log))
	return s
}

// NewFromConfig creates a service from cfg. Extra opts are applied after the
// ones derived from cfg.
func NewFromConfig(cfg Config, source media.Source, surface widget.Surface, opts ...Option) (*Service, error) {
	base, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return New(source, surface, append(base, opts...)...), nil
}

// Run subscribes to the source, renders the initial state and processes
// events until ctx is done or Close is called. Teardown happens before Run
// returns.
func (s *Service) Run(ctx context.Context) error {
	if err := s.start(); err != nil {
		return err
	}
	defer s.teardown()

	unsubscribe, err := s.source.Subscribe(func(list []media.Session) {
		s.queue.post(event{kind: eventSessionsChanged, sessions: list})
	})
	if err != nil {
		s.log.WarnContext(ctx, "session listener unavailable, relying on refresh", logger.Error(err))
	} else {
		s.unsubscribe = unsubscribe
	}

	s.refresh(ctx)
	s.present(ctx, true)

	var tick <-chan time.Time
	if s.poll > 0 {
		ticker := time.NewTicker(s.poll)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.closing:
			return nil
		case <-s.queue.ready:
			for _, ev := range s.queue.drain() {
				s.handle(ctx, ev)
			}
		case res := <-s.extractor.Results():
			s.handlePalette(ctx, res)
		case <-tick:
			s.handle(ctx, event{kind: eventRefresh})
		}
	}
}

// Dispatch enqueues an action for the event loop. It never blocks.
func (s *Service) Dispatch(_ context.Context, a command.Action) error {
	if !s.queue.post(event{kind: eventCommand, action: a}) {
		return ErrClosed
	}
	return nil
}

// RequestRefresh asks the loop to re-query the session source.
func (s *Service) RequestRefresh() error {
	if !s.queue.post(event{kind: eventRefresh}) {
		return ErrClosed
	}
	return nil
}

// Snapshot returns the last pushed snapshot.
func (s *Service) Snapshot() (widget.RenderState, bool) {
	return s.presenter.Last()
}

// Done is closed once teardown has completed.
func (s *Service) Done() <-chan struct{} {
	return s.done
}

// Close stops the service. It does not wait for the loop or the palette
// worker; use Done for that. Safe to call more than once.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		close(s.closing)
		s.queue.close()
		s.extractor.Close()
	})
	s.mu.Lock()
	idle := s.state == stateIdle
	if idle {
		s.state = stateClosed
	}
	s.mu.Unlock()

	// A running loop observes closing and tears down on its way out.
	if idle {
		s.teardown()
	}
	return nil
}

// start moves the service from idle to running. Close and start agree on the
// state under mu, so either the loop owns teardown or Close does.
func (s *Service) start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.state == stateClosed || s.isClosing():
		return ErrClosed
	case s.state == stateRunning:
		return ErrAlreadyRunning
	}
	s.state = stateRunning
	return nil
}

func (s *Service) isClosing() bool {
	select {
	case <-s.closing:
		return true
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Service) teardown() {
	s.teardownOnce.Do(func() {
		s.queue.close()
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		s.registry.Clear()
		s.extractor.Close()
		s.cache.Clear()
		close(s.done)
		s.log.Debug("service stopped")
	})
}

func (s *Service) postSessionEvent(ev media.SessionEvent) {
	s.queue.post(event{kind: eventSession, session: ev})
}

func (s *Service) handle(ctx context.Context, ev event) {
	switch ev.kind {
	case eventSessionsChanged:
		s.registry.Apply(ctx, ev.sessions)
		s.present(ctx, true)
	case eventRefresh:
		// Metadata and status of the same session arrive as session events,
		// so only a change of the active session needs a new frame here.
		if changed, ok := s.refresh(ctx); ok && changed {
			s.present(ctx, true)
		}
	case eventSession:
		s.handleSessionEvent(ctx, ev.session)
	case eventCommand:
		p, err := s.router.Dispatch(ctx, ev.action)
		if err != nil {
			s.log.DebugContext(logger.WithToken(ctx, p.Token), "command ignored",
				logger.Action(ev.action), logger.Error(err))
		}
	}
}

func (s *Service) handleSessionEvent(ctx context.Context, ev media.SessionEvent) {
	prev, ok := s.registry.Multiplexer().Observe(ev)
	if !ok {
		return
	}

	active := s.registry.Active()
	if active != nil && active.Token() == ev.Token {
		s.present(ctx, ev.Kind == media.EventMetadata)
		return
	}

	if ev.Kind == media.EventStatus && ev.Status == media.StatusPlaying && prev != media.StatusPlaying {
		if _, ok := s.refresh(ctx); !ok {
			// Re-rank what we already track; handles report live status.
			s.registry.Apply(ctx, s.registry.Tracked())
		}
		s.present(ctx, true)
	}
}

func (s *Service) handlePalette(ctx context.Context, res palette.Result) {
	if s.isClosing() {
		return
	}
	if s.cache.Apply(res.Identity, res.Color) {
		s.present(ctx, false)
	}
}

// refresh re-queries the source and reports whether the active session
// changed. Failures keep the last known set and report ok=false.
func (s *Service) refresh(ctx context.Context) (changed, ok bool) {
	changed, err := s.registry.Refresh(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "session refresh failed", logger.Error(err))
		return false, false
	}
	return changed, true
}

// present renders the active session and pushes exactly one snapshot.
func (s *Service) present(ctx context.Context, reprocess bool) {
	active := s.registry.Active()
	frame, job := s.cache.Render(active, reprocess)
	if job != nil {
		if err := s.extractor.Submit(*job); err != nil && !errors.Is(err, palette.ErrExtractorClosed) {
			s.log.WarnContext(ctx, "palette job rejected", logger.Identity(job.Identity), logger.Error(err))
		}
	}
	s.presenter.Present(logger.WithToken(ctx, frame.Token), frame, s.router.Controls(active))
}

// loopSessions lets the router refresh through the loop's own pipeline so a
// session found by the retry is also rendered.
type loopSessions struct{ s *Service }

func (l loopSessions) Active() media.Session { return l.s.registry.Active() }

func (l loopSessions) Refresh(ctx context.Context) (bool, error) {
	changed, err := l.s.registry.Refresh(ctx)
	if err != nil {
		return false, err
	}
	if changed {
		l.s.present(ctx, true)
	}
	return changed, nil
}
