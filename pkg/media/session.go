package media

import "context"

// Callback receives per-session state and metadata notifications.
// Hosts deliver events one at a time and never re-enter a callback concurrently.
type Callback func(SessionEvent)

// SessionsChangedFunc is notified with the full, ordered list of active sessions.
type SessionsChangedFunc func(sessions []Session)

// Session is a handle to a host playback context.
// Getters return the live host state; they may be called repeatedly.
type Session interface {
	Token() Token
	// App identifies the owning application (package name, bundle id, desktop entry).
	App() string
	Metadata() Metadata
	Status() Status
	Actions() Actions
	// OpenHandle returns the host-level handle that brings the session's UI
	// to the foreground, or nil when the host did not associate one.
	OpenHandle() Opener
	// Subscribe registers cb for state and metadata events of this session.
	// The returned function unregisters it; it is synchronous and idempotent.
	Subscribe(cb Callback) (unsubscribe func(), err error)
	Issue(ctx context.Context, op Operation) error
}

// Source enumerates active sessions in host order.
type Source interface {
	// ActiveSessions returns the current sessions or ErrPermissionDenied.
	ActiveSessions(ctx context.Context) ([]Session, error)
	// Subscribe registers fn for session-set changes.
	Subscribe(fn SessionsChangedFunc) (unsubscribe func(), err error)
}

// Opener brings an application or one of its screens to the foreground.
type Opener interface {
	Open(ctx context.Context) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context) error

func (f OpenerFunc) Open(ctx context.Context) error { return f(ctx) }

// Launcher resolves a generic launch handle for an application.
type Launcher interface {
	LaunchOpener(app string) (Opener, bool)
}

// NotificationLookup finds the open handle of an active notification posted by
// app for the given title. It is best effort; absence is not an error.
type NotificationLookup interface {
	LookupOpener(app, title string) (Opener, bool)
}
