package filehost

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dmitrymomot/nowplaying/pkg/logger"
	"github.com/dmitrymomot/nowplaying/pkg/media"
)

// DefaultDebounce is how long Watch waits for more file events before reloading.
const DefaultDebounce = 100 * time.Millisecond

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDebounce sets the coalescing interval for file events.
func WithDebounce(d time.Duration) Option {
	return func(s *Source) {
		if d >= 0 {
			s.debounce = d
		}
	}
}

// WithOpenFunc sets how open and launch targets are handed to the desktop.
// Without it descriptors' open and launch fields are ignored.
func WithOpenFunc(fn OpenFunc) Option {
	return func(s *Source) { s.openFn = fn }
}

// state is one parsed descriptor, ready to be applied to a session handle.
type state struct {
	app     string
	meta    media.Metadata
	status  media.Status
	actions media.Actions
	open    media.Opener
	launch  string
	order   int
	file    string
}

// Source implements media.Source and media.Launcher over a directory.
type Source struct {
	dir      string
	logger   *slog.Logger
	debounce time.Duration
	openFn   OpenFunc

	reloadMu sync.Mutex

	mu        sync.Mutex
	sessions  map[media.Token]*session
	list      []media.Session
	launch    map[string]string
	listeners map[uint64]media.SessionsChangedFunc
	lorder    []uint64
	nextID    uint64
}

// New creates a Source over dir. Nothing is read until ActiveSessions or Watch.
func New(dir string, opts ...Option) *Source {
	s := &Source{
		dir:       dir,
		logger:    slog.Default(),
		debounce:  DefaultDebounce,
		sessions:  make(map[media.Token]*session),
		launch:    make(map[string]string),
		listeners: make(map[uint64]media.SessionsChangedFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("filehost"))
	return s
}

// Dir returns the watched directory.
func (s *Source) Dir() string { return s.dir }

// ActiveSessions reloads the directory and returns the ordered session list.
func (s *Source) ActiveSessions(ctx context.Context) ([]media.Session, error) {
	list, _, err := s.reload(ctx)
	return list, err
}

// Subscribe registers fn for session-set changes detected by Watch.
func (s *Source) Subscribe(fn media.SessionsChangedFunc) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	s.lorder = append(s.lorder, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners, id)
		})
	}, nil
}

// LaunchOpener reports whether a current descriptor names a launch target
// for app. The returned opener looks the target up again when invoked, so
// it follows descriptor edits and fails with ErrNoLaunchTarget once no
// descriptor for app carries one.
func (s *Source) LaunchOpener(app string) (media.Opener, bool) {
	if s.openFn == nil {
		return nil, false
	}
	if _, ok := s.launchTarget(app); !ok {
		return nil, false
	}
	return media.OpenerFunc(func(ctx context.Context) error {
		target, ok := s.launchTarget(app)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNoLaunchTarget, app)
		}
		return s.openFn(ctx, target)
	}), true
}

func (s *Source) launchTarget(app string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.launch[app]
	return target, ok
}

// Watch reloads the directory whenever descriptors or images change and
// notifies listeners of session-set changes. It blocks until ctx is done.
// Only the top-level directory is watched.
func (s *Source) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Join(ErrWatcherUnavailable, err)
	}
	defer func() {
		_ = w.Close()
	}()

	if err := w.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}
	s.logger.InfoContext(ctx, "watching session directory", slog.String("dir", s.dir))
	s.notify(ctx)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
				fire = timer.C
			} else {
				timer.Reset(s.debounce)
			}
		case <-fire:
			timer, fire = nil, nil
			s.notify(ctx)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.WarnContext(ctx, "file watcher error", logger.Error(err))
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(ev.Name)
	return isDescriptor(name) || isImage(name)
}

func (s *Source) notify(ctx context.Context) {
	list, changed, err := s.reload(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "session directory reload failed", logger.Error(err))
		return
	}
	if !changed {
		return
	}

	s.mu.Lock()
	fns := s.listenersLocked()
	s.mu.Unlock()
	for _, fn := range fns {
		fn(list)
	}
}

// reload reads every descriptor, updates the session handles and fires their
// events. changed reports whether the ordered token list differs.
func (s *Source) reload(ctx context.Context) ([]media.Session, bool, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	entries, err := os.ReadDir(s.dir)
	switch {
	case errors.Is(err, fs.ErrPermission):
		return nil, false, media.ErrPermissionDenied
	case errors.Is(err, fs.ErrNotExist):
		entries = nil
	case err != nil:
		return nil, false, fmt.Errorf("read session directory: %w", err)
	}

	states := make(map[media.Token]state, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isDescriptor(e.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			s.logger.WarnContext(ctx, "skipping unreadable descriptor", slog.String("file", e.Name()), logger.Error(err))
			continue
		}
		d, err := ParseDescriptor(e.Name(), data)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping invalid descriptor", slog.String("file", e.Name()), logger.Error(err))
			continue
		}
		token := media.Token(d.Token)
		if _, dup := states[token]; dup {
			s.logger.WarnContext(ctx, "duplicate session token", logger.Token(token), slog.String("file", e.Name()))
			continue
		}
		states[token] = s.stateOf(ctx, d, e.Name())
	}

	type pending struct {
		cbs    []media.Callback
		events []media.SessionEvent
	}
	var fire []pending

	// When several descriptors of one app name a launch target, the first file wins.
	launch := make(map[string]string)
	files := make(map[string]string)
	for _, st := range states {
		if st.app == "" || st.launch == "" {
			continue
		}
		if f, seen := files[st.app]; seen && f < st.file {
			continue
		}
		launch[st.app], files[st.app] = st.launch, st.file
	}

	s.mu.Lock()
	s.launch = launch
	for token, sess := range s.sessions {
		if _, ok := states[token]; !ok {
			sess.markGone()
			delete(s.sessions, token)
		}
	}
	for token, st := range states {
		sess, ok := s.sessions[token]
		if !ok {
			sess = newSession(s, token)
			s.sessions[token] = sess
		}
		if cbs, events := sess.update(st); len(events) > 0 && ok {
			fire = append(fire, pending{cbs, events})
		}
	}
	list := make([]media.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	slices.SortFunc(list, func(a, b media.Session) int {
		ao, af := a.(*session).sortKey()
		bo, bf := b.(*session).sortKey()
		return cmp.Or(cmp.Compare(ao, bo), cmp.Compare(af, bf))
	})
	changed := !slices.EqualFunc(list, s.list, func(a, b media.Session) bool {
		return a.Token() == b.Token()
	})
	s.list = list
	s.mu.Unlock()

	for _, p := range fire {
		for _, ev := range p.events {
			for _, cb := range p.cbs {
				cb(ev)
			}
		}
	}
	return slices.Clone(list), changed, nil
}

func (s *Source) stateOf(ctx context.Context, d Descriptor, file string) state {
	st := state{
		app:     d.App,
		status:  media.ParseStatus(d.Status),
		actions: d.actions(),
		order:   d.Order,
		file:    file,
		meta:    media.Metadata{Title: d.Title, Artist: d.Artist},
	}
	if d.Art != "" {
		var prev *media.Art
		s.mu.Lock()
		if sess, ok := s.sessions[media.Token(d.Token)]; ok {
			prev = sess.currentArt()
		}
		s.mu.Unlock()
		st.meta.Art = s.loadArt(ctx, d.Art, prev)
	}
	if s.openFn != nil {
		if d.Open != "" {
			st.open = Target(s.openFn, d.Open)
		}
		st.launch = d.Launch
	}
	return st
}

// loadArt decodes the image at path. The key combines the absolute path with
// size and modification time, so an untouched file reuses prev.
func (s *Source) loadArt(ctx context.Context, path string, prev *media.Art) *media.Art {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.dir, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	fi, err := os.Stat(path)
	if err != nil {
		s.logger.DebugContext(ctx, "art not available", slog.String("path", path), logger.Error(err))
		return nil
	}
	key := fmt.Sprintf("%s@%d:%d", path, fi.ModTime().UnixNano(), fi.Size())
	if prev != nil && prev.Key == key {
		return prev
	}

	f, err := os.Open(path)
	if err != nil {
		s.logger.DebugContext(ctx, "art not available", slog.String("path", path), logger.Error(err))
		return nil
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		s.logger.WarnContext(ctx, "art decode failed", slog.String("path", path), logger.Error(err))
		return nil
	}
	return &media.Art{Image: img, Key: key}
}

// Must be called with lock held.
func (s *Source) listenersLocked() []media.SessionsChangedFunc {
	fns := make([]media.SessionsChangedFunc, 0, len(s.listeners))
	alive := s.lorder[:0]
	for _, id := range s.lorder {
		if fn, ok := s.listeners[id]; ok {
			fns = append(fns, fn)
			alive = append(alive, id)
		}
	}
	s.lorder = alive
	return fns
}
