package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/nowplaying/pkg/logger"
	"github.com/dmitrymomot/nowplaying/pkg/media"
	"github.com/dmitrymomot/nowplaying/pkg/metrics"
	"github.com/dmitrymomot/nowplaying/pkg/widget"
)

// Sessions gives the router access to the active session.
type Sessions interface {
	Active() media.Session
	Refresh(ctx context.Context) (bool, error)
}

// Open-app resolution steps, reported in Pending.OpenedVia.
const (
	OpenedViaSession      = "session"
	OpenedViaNotification = "notification"
	OpenedViaLauncher     = "launcher"
	OpenedViaFallback     = "fallback"
)

// Option configures a Router.
type Option func(*Router)

func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.log = l
		}
	}
}

// WithNotificationLookup enables the notification step of open-app resolution.
func WithNotificationLookup(n media.NotificationLookup) Option {
	return func(r *Router) { r.notifications = n }
}

// WithLauncher enables the application launch step of open-app resolution.
func WithLauncher(l media.Launcher) Option {
	return func(r *Router) { r.launcher = l }
}

// WithFallbackOpener is used for OpenApp when nothing else resolves,
// including when no session exists at all.
func WithFallbackOpener(o media.Opener) Option {
	return func(r *Router) { r.fallback = o }
}

// WithLaunchCacheSize bounds the number of memoized launcher lookups.
func WithLaunchCacheSize(n int) Option {
	return func(r *Router) { r.launches = newLaunchCache(n) }
}

// Router dispatches actions to the active session.
type Router struct {
	sessions      Sessions
	notifications media.NotificationLookup
	launcher      media.Launcher
	fallback      media.Opener
	launches      *launchCache
	log           *slog.Logger
}

// NewRouter creates a router over sessions.
func NewRouter(sessions Sessions, opts ...Option) *Router {
	r := &Router{
		sessions: sessions,
		launches: newLaunchCache(defaultLaunchCacheSize),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With(logger.Component("command"))
	return r
}

// Dispatch resolves and executes a. The error is informational: callers log
// it and move on, the user never sees it.
func (r *Router) Dispatch(ctx context.Context, a Action) (Pending, error) {
	var (
		p   Pending
		err error
	)
	switch {
	case a == ActionOpenApp:
		p, err = r.open(ctx)
	case a.Transport():
		p, err = r.transport(ctx, a)
	default:
		p, err = Pending{Action: a}, ErrUnknownAction
	}

	metrics.CommandsTotal.WithLabelValues(a.String(), result(err)).Inc()
	if err != nil {
		r.log.DebugContext(ctx, "command not executed", logger.Action(a), logger.Error(err))
	}
	return p, err
}

func (r *Router) transport(ctx context.Context, a Action) (Pending, error) {
	p := Pending{Action: a}

	session := r.sessions.Active()
	if session == nil {
		if _, err := r.sessions.Refresh(ctx); err != nil {
			r.log.WarnContext(ctx, "refresh before command failed", logger.Action(a), logger.Error(err))
		}
		session = r.sessions.Active()
	}
	if session == nil {
		return p, ErrNoActiveSession
	}

	state, err := readState(session)
	if err != nil {
		return p, errors.Join(ErrNoActiveSession, err)
	}
	p.Token = state.token

	var op media.Operation
	switch a {
	case ActionPlayPause:
		op = media.OpPlay
		if state.status == media.StatusPlaying {
			op = media.OpPause
		}
	case ActionNext:
		if !state.actions.Has(media.ActionSkipNext) {
			return p, ErrActionDisabled
		}
		op = media.OpSkipNext
	case ActionPrev:
		if !state.actions.Has(media.ActionSkipPrevious) {
			return p, ErrActionDisabled
		}
		op = media.OpSkipPrevious
	}

	if err := issue(ctx, session, op); err != nil {
		r.log.WarnContext(ctx, "host rejected operation",
			logger.Token(p.Token), logger.Operation(op), logger.Error(err))
		return p, errors.Join(ErrIssueFailed, err)
	}
	p.Operation = op
	return p, nil
}

func (r *Router) open(ctx context.Context) (Pending, error) {
	p := Pending{Action: ActionOpenApp}

	opener, via := r.resolveOpener(r.sessions.Active(), &p)
	if opener == nil {
		return p, ErrNothingToOpen
	}
	if err := safeOpen(ctx, opener); err != nil {
		r.log.WarnContext(ctx, "open app failed", slog.String("via", via), logger.Error(err))
		return p, errors.Join(ErrOpenFailed, err)
	}
	p.OpenedVia = via
	return p, nil
}

func (r *Router) resolveOpener(session media.Session, p *Pending) (media.Opener, string) {
	if session != nil {
		if state, err := readState(session); err == nil {
			p.Token = state.token
			if state.open != nil {
				return state.open, OpenedViaSession
			}
			if r.notifications != nil {
				if o, ok := r.notifications.LookupOpener(state.app, state.title); ok && o != nil {
					return o, OpenedViaNotification
				}
			}
			if r.launcher != nil && state.app != "" {
				if o, ok := r.launches.resolve(state.app, r.launcher); ok {
					return o, OpenedViaLauncher
				}
			}
		}
	}
	if r.fallback != nil {
		return r.fallback, OpenedViaFallback
	}
	return nil, ""
}

// Controls derives button affordances for session. Disabled buttons are
// also rejected by Dispatch.
func (r *Router) Controls(session media.Session) widget.Controls {
	var c widget.Controls
	openable := r.fallback != nil

	if session != nil {
		if state, err := readState(session); err == nil {
			c.PlayPause = widget.Affordance{Visible: true, Enabled: true}
			c.Next = widget.Affordance{Visible: true, Enabled: state.actions.Has(media.ActionSkipNext)}
			c.Prev = widget.Affordance{Visible: true, Enabled: state.actions.Has(media.ActionSkipPrevious)}
			openable = true
		}
	}
	c.Open = widget.Affordance{Visible: openable, Enabled: openable}
	return c
}

// ForgetLauncher drops the memoized launcher lookup for app.
func (r *Router) ForgetLauncher(app string) {
	r.launches.forget(app)
}

type sessionState struct {
	token   media.Token
	app     string
	title   string
	status  media.Status
	actions media.Actions
	open    media.Opener
}

func readState(s media.Session) (st sessionState, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("session handle panicked: %v", rec)
		}
	}()
	return sessionState{
		token:   s.Token(),
		app:     s.App(),
		title:   s.Metadata().Title,
		status:  s.Status(),
		actions: s.Actions(),
		open:    s.OpenHandle(),
	}, nil
}

func issue(ctx context.Context, s media.Session, op media.Operation) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("issue panicked: %v", rec)
		}
	}()
	return s.Issue(ctx, op)
}

func safeOpen(ctx context.Context, o media.Opener) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("open panicked: %v", rec)
		}
	}()
	return o.Open(ctx)
}

func result(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, ErrActionDisabled):
		return metrics.ResultDisabled
	case errors.Is(err, ErrNoActiveSession), errors.Is(err, ErrNothingToOpen):
		return metrics.ResultNoop
	default:
		return metrics.ResultError
	}
}
