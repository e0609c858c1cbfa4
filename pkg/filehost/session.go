package filehost

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrymomot/nowplaying/pkg/media"
)

// session is the handle for one descriptor. The Source keeps the same handle
// for a token across reloads so subscriptions survive file edits.
type session struct {
	token media.Token
	src   *Source

	mu      sync.Mutex
	app     string
	meta    media.Metadata
	status  media.Status
	actions media.Actions
	open    media.Opener
	order   int
	file    string
	gone    bool

	callbacks map[uint64]media.Callback
	cbOrder   []uint64
	nextID    uint64
}

func newSession(src *Source, token media.Token) *session {
	return &session{
		token:     token,
		src:       src,
		callbacks: make(map[uint64]media.Callback),
	}
}

func (s *session) Token() media.Token { return s.token }

func (s *session) App() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.app
}

func (s *session) Metadata() media.Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta
}

func (s *session) Status() media.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *session) Actions() media.Actions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actions
}

func (s *session) OpenHandle() media.Opener {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *session) Subscribe(cb media.Callback) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.callbacks[id] = cb
	s.cbOrder = append(s.cbOrder, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.callbacks, id)
		})
	}, nil
}

// Issue appends the operation name to "<token>.ops".
func (s *session) Issue(_ context.Context, op media.Operation) error {
	s.mu.Lock()
	gone := s.gone
	s.mu.Unlock()
	if gone {
		return media.ErrSessionGone
	}

	path := filepath.Join(s.src.dir, string(s.token)+".ops")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ops file: %w", err)
	}
	if _, err := fmt.Fprintln(f, op.String()); err != nil {
		_ = f.Close()
		return fmt.Errorf("write ops file: %w", err)
	}
	return f.Close()
}

// update replaces the session state and returns the events the change implies.
func (s *session) update(st state) ([]media.Callback, []media.SessionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []media.SessionEvent
	if s.meta.Title != st.meta.Title || s.meta.Artist != st.meta.Artist || artKey(s.meta.Art) != artKey(st.meta.Art) {
		events = append(events, media.SessionEvent{Token: s.token, Kind: media.EventMetadata, Status: st.status})
	}
	if s.status != st.status || s.actions != st.actions {
		events = append(events, media.SessionEvent{Token: s.token, Kind: media.EventStatus, Status: st.status})
	}

	s.app = st.app
	s.meta = st.meta
	s.status = st.status
	s.actions = st.actions
	s.open = st.open
	s.order = st.order
	s.file = st.file
	s.gone = false

	if len(events) == 0 {
		return nil, nil
	}
	return s.callbacksLocked(), events
}

func (s *session) markGone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gone = true
}

func (s *session) currentArt() *media.Art {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta.Art
}

func (s *session) sortKey() (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order, s.file
}

// Must be called with lock held.
func (s *session) callbacksLocked() []media.Callback {
	cbs := make([]media.Callback, 0, len(s.callbacks))
	alive := s.cbOrder[:0]
	for _, id := range s.cbOrder {
		if cb, ok := s.callbacks[id]; ok {
			cbs = append(cbs, cb)
			alive = append(alive, id)
		}
	}
	s.cbOrder = alive
	return cbs
}

func artKey(a *media.Art) string {
	if a == nil {
		return ""
	}
	return a.Key
}
