package media

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemorySource is an in-memory Source. Listeners are notified synchronously,
// outside of the internal lock, in registration order.
type MemorySource struct {
	mu        sync.Mutex
	sessions  []*MemorySession
	listeners map[uint64]SessionsChangedFunc
	order     []uint64
	nextID    uint64
	denied    bool
	denySubs  bool
	queries   int
}

// NewMemorySource creates an empty in-memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{listeners: make(map[uint64]SessionsChangedFunc)}
}

// ActiveSessions returns the sessions in the order they were set.
func (s *MemorySource) ActiveSessions(_ context.Context) ([]Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries++
	if s.denied {
		return nil, ErrPermissionDenied
	}
	return s.snapshotLocked(), nil
}

// Subscribe registers fn for session-set changes.
func (s *MemorySource) Subscribe(fn SessionsChangedFunc) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.denied || s.denySubs {
		return nil, ErrSubscriptionDenied
	}
	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners, id)
		})
	}, nil
}

// SetSessions replaces the active set and notifies listeners with the new list.
func (s *MemorySource) SetSessions(sessions ...*MemorySession) {
	s.mu.Lock()
	s.sessions = append([]*MemorySession(nil), sessions...)
	list := s.snapshotLocked()
	fns := s.listenersLocked()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(list)
	}
}

// SetSessionsQuietly replaces the active set without notifying listeners.
// It mimics hosts that only expose changes through polling.
func (s *MemorySource) SetSessionsQuietly(sessions ...*MemorySession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append([]*MemorySession(nil), sessions...)
}

// DenyPermission toggles ErrPermissionDenied for queries and subscriptions.
func (s *MemorySource) DenyPermission(denied bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denied = denied
}

// DenySubscriptions makes Subscribe fail while queries keep working.
func (s *MemorySource) DenySubscriptions(denied bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denySubs = denied
}

// Listeners returns the number of registered listeners.
func (s *MemorySource) Listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Queries returns how many times ActiveSessions was called.
func (s *MemorySource) Queries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries
}

// Must be called with lock held.
func (s *MemorySource) snapshotLocked() []Session {
	out := make([]Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess
	}
	return out
}

// Must be called with lock held.
func (s *MemorySource) listenersLocked() []SessionsChangedFunc {
	fns := make([]SessionsChangedFunc, 0, len(s.listeners))
	alive := s.order[:0]
	for _, id := range s.order {
		if fn, ok := s.listeners[id]; ok {
			fns = append(fns, fn)
			alive = append(alive, id)
		}
	}
	s.order = alive
	return fns
}

// MemorySessionOption configures a MemorySession.
type MemorySessionOption func(*MemorySession)

// WithToken overrides the generated session token.
func WithToken(token Token) MemorySessionOption {
	return func(s *MemorySession) {
		if token != "" {
			s.token = token
		}
	}
}

// WithTitle sets title and artist.
func WithTitle(title, artist string) MemorySessionOption {
	return func(s *MemorySession) {
		s.meta.Title = title
		s.meta.Artist = artist
	}
}

// WithArt sets album art.
func WithArt(art *Art) MemorySessionOption {
	return func(s *MemorySession) { s.meta.Art = art }
}

func WithStatus(status Status) MemorySessionOption {
	return func(s *MemorySession) { s.status = status }
}

func WithActions(actions Actions) MemorySessionOption {
	return func(s *MemorySession) { s.actions = actions }
}

// WithOpenHandle associates a host-level open handle with the session.
func WithOpenHandle(o Opener) MemorySessionOption {
	return func(s *MemorySession) { s.open = o }
}

// WithAutoApply makes Issue update the session status the way a real player
// would (play -> playing, pause -> paused) and fire the status callback.
func WithAutoApply() MemorySessionOption {
	return func(s *MemorySession) { s.autoApply = true }
}

// MemorySession is an in-memory Session. Callbacks run synchronously on the
// goroutine that mutates the session, outside of the internal lock.
type MemorySession struct {
	mu        sync.Mutex
	token     Token
	app       string
	meta      Metadata
	status    Status
	actions   Actions
	open      Opener
	autoApply bool
	denySubs  bool
	issueErr  error

	callbacks map[uint64]Callback
	order     []uint64
	nextID    uint64
	issued    []Operation
}

// NewMemorySession creates a session owned by app. A random token is assigned
// unless WithToken is given.
func NewMemorySession(app string, opts ...MemorySessionOption) *MemorySession {
	s := &MemorySession{
		token:     Token(uuid.NewString()),
		app:       app,
		actions:   ActionPlay | ActionPause | ActionPlayPause,
		callbacks: make(map[uint64]Callback),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemorySession) Token() Token { return s.token }
func (s *MemorySession) App() string  { return s.app }

func (s *MemorySession) Metadata() Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta
}

func (s *MemorySession) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *MemorySession) Actions() Actions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actions
}

func (s *MemorySession) OpenHandle() Opener {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Subscribe registers cb. The returned function is idempotent.
func (s *MemorySession) Subscribe(cb Callback) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.denySubs {
		return nil, ErrSubscriptionDenied
	}
	s.nextID++
	id := s.nextID
	s.callbacks[id] = cb
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.callbacks, id)
		})
	}, nil
}

// Issue records op and, with WithAutoApply, updates the status.
func (s *MemorySession) Issue(_ context.Context, op Operation) error {
	s.mu.Lock()
	s.issued = append(s.issued, op)
	if s.issueErr != nil {
		err := s.issueErr
		s.mu.Unlock()
		return err
	}
	apply := s.autoApply
	s.mu.Unlock()

	if !apply {
		return nil
	}
	switch op {
	case OpPlay:
		s.SetStatus(StatusPlaying)
	case OpPause:
		s.SetStatus(StatusPaused)
	}
	return nil
}

// SetStatus updates the status and fires a status event.
func (s *MemorySession) SetStatus(status Status) {
	s.mu.Lock()
	s.status = status
	cbs := s.callbacksLocked()
	s.mu.Unlock()

	s.fire(cbs, SessionEvent{Token: s.token, Kind: EventStatus, Status: status})
}

// SetMetadata replaces the metadata and fires a metadata event.
func (s *MemorySession) SetMetadata(meta Metadata) {
	s.mu.Lock()
	s.meta = meta
	status := s.status
	cbs := s.callbacksLocked()
	s.mu.Unlock()

	s.fire(cbs, SessionEvent{Token: s.token, Kind: EventMetadata, Status: status})
}

// SetActions changes the advertised actions. Hosts report this as a state change.
func (s *MemorySession) SetActions(actions Actions) {
	s.mu.Lock()
	s.actions = actions
	status := s.status
	cbs := s.callbacksLocked()
	s.mu.Unlock()

	s.fire(cbs, SessionEvent{Token: s.token, Kind: EventStatus, Status: status})
}

// FailIssue makes subsequent Issue calls return err. Pass nil to reset.
func (s *MemorySession) FailIssue(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issueErr = err
}

// DenySubscriptions makes Subscribe fail with ErrSubscriptionDenied.
func (s *MemorySession) DenySubscriptions(denied bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denySubs = denied
}

// Issued returns a copy of all operations issued so far.
func (s *MemorySession) Issued() []Operation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Operation(nil), s.issued...)
}

// Subscribers returns the number of live callbacks.
func (s *MemorySession) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.callbacks)
}

// Must be called with lock held.
func (s *MemorySession) callbacksLocked() []Callback {
	cbs := make([]Callback, 0, len(s.callbacks))
	alive := s.order[:0]
	for _, id := range s.order {
		if cb, ok := s.callbacks[id]; ok {
			cbs = append(cbs, cb)
			alive = append(alive, id)
		}
	}
	s.order = alive
	return cbs
}

func (s *MemorySession) fire(cbs []Callback, ev SessionEvent) {
	for _, cb := range cbs {
		cb(ev)
	}
}
