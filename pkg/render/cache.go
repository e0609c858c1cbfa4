package render

import (
	"image"
	"image/color"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/nowplaying/pkg/artwork"
	"github.com/dmitrymomot/nowplaying/pkg/logger"
	"github.com/dmitrymomot/nowplaying/pkg/media"
	"github.com/dmitrymomot/nowplaying/pkg/metrics"
	"github.com/dmitrymomot/nowplaying/pkg/palette"
)

// Placeholder texts.
const (
	NoMediaTitle   = "No Media Playing"
	NoMediaArtist  = "Open a media app"
	UnknownTitle   = "Unknown Title"
	UnknownArtist  = "Unknown Artist"
	DefaultMaxEdge = 512
	DefaultRadius  = 28
)

// Entry is the cached derivation for one piece of art.
type Entry struct {
	Token        media.Token
	Identity     artwork.Identity
	Image        *image.RGBA
	Color        color.RGBA
	ColorApplied bool
}

// Frame is everything the presenter needs from the render stage.
type Frame struct {
	HasSession     bool
	Token          media.Token
	App            string
	Title          string
	Artist         string
	Status         media.Status
	Actions        media.Actions
	Art            image.Image
	ArtPlaceholder bool
	Identity       artwork.Identity
	Background     color.RGBA
}

// Option configures a Cache.
type Option func(*Cache)

func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMaxArtEdge bounds the longest edge of cached art.
func WithMaxArtEdge(edge int) Option {
	return func(c *Cache) {
		if edge > 0 {
			c.maxEdge = edge
		}
	}
}

// WithCornerRadius sets the rounding radius in pixels.
func WithCornerRadius(r int) Option {
	return func(c *Cache) {
		if r >= 0 {
			c.radius = r
		}
	}
}

// WithPinnedEdge sets the edge whose corners get rounded.
func WithPinnedEdge(e artwork.Edge) Option {
	return func(c *Cache) { c.edge = e }
}

// WithDefaultColor sets the background used until a palette result arrives.
func WithDefaultColor(col color.RGBA) Option {
	return func(c *Cache) { c.defaultColor = col }
}

// Cache holds at most one Entry.
type Cache struct {
	log          *slog.Logger
	maxEdge      int
	radius       int
	edge         artwork.Edge
	defaultColor color.RGBA

	mu    sync.Mutex
	entry *Entry
}

// NewCache creates an empty cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		log:          slog.Default(),
		maxEdge:      DefaultMaxEdge,
		radius:       DefaultRadius,
		edge:         artwork.EdgeLeft,
		defaultColor: palette.DefaultColor,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(logger.Component("render"))
	return c
}

// DefaultColor returns the configured default background.
func (c *Cache) DefaultColor() color.RGBA { return c.defaultColor }

// Render derives the frame for session. The returned job is non-nil only
// when new art was installed and needs a palette color.
func (c *Cache) Render(session media.Session, reprocess bool) (Frame, *palette.Job) {
	snap, ok := read(session)
	if !ok {
		c.Clear()
		metrics.RenderCacheTotal.WithLabelValues("none").Inc()
		return c.emptyFrame(), nil
	}

	frame := Frame{
		HasSession: true,
		Token:      snap.token,
		App:        snap.app,
		Title:      orDefault(snap.meta.Title, UnknownTitle),
		Artist:     orDefault(snap.meta.Artist, UnknownArtist),
		Status:     snap.status,
		Actions:    snap.actions,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry != nil && c.entry.Token != snap.token {
		c.entry = nil
	}

	if !snap.meta.HasArt() {
		c.entry = nil
		return c.withPlaceholder(frame), nil
	}

	if !reprocess {
		if c.entry == nil {
			return c.withPlaceholder(frame), nil
		}
		return c.withEntry(frame), nil
	}

	id, ok := artwork.IdentityOf(snap.meta.Art)
	if !ok {
		c.entry = nil
		return c.withPlaceholder(frame), nil
	}
	if c.entry != nil && c.entry.Identity == id {
		metrics.RenderCacheTotal.WithLabelValues("hit").Inc()
		return c.withEntry(frame), nil
	}

	metrics.RenderCacheTotal.WithLabelValues("miss").Inc()
	c.entry = nil

	scaled, err := artwork.Downscale(snap.meta.Art.Image, c.maxEdge)
	if err != nil {
		c.log.Warn("downscale failed", logger.Token(snap.token), logger.Error(err))
		return c.withPlaceholder(frame), nil
	}
	rounded, err := artwork.RoundEdge(scaled, c.radius, c.edge)
	if err != nil {
		c.log.Warn("rounding failed", logger.Token(snap.token), logger.Error(err))
		return c.withPlaceholder(frame), nil
	}

	c.entry = &Entry{
		Token:    snap.token,
		Identity: id,
		Image:    rounded,
		Color:    c.defaultColor,
	}
	return c.withEntry(frame), &palette.Job{Identity: id, Image: scaled}
}

// Apply installs col for id. It reports whether the visible color changed;
// results for a superseded identity, or equal to the current color, are dropped.
func (c *Cache) Apply(id artwork.Identity, col color.RGBA) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry == nil || c.entry.Identity != id {
		metrics.PaletteJobsTotal.WithLabelValues(metrics.ResultDiscarded).Inc()
		return false
	}
	c.entry.ColorApplied = true
	if c.entry.Color == col {
		metrics.PaletteJobsTotal.WithLabelValues(metrics.ResultUnchanged).Inc()
		return false
	}
	c.entry.Color = col
	metrics.PaletteJobsTotal.WithLabelValues(metrics.ResultApplied).Inc()
	return true
}

// Current returns a copy of the live entry.
func (c *Cache) Current() (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil {
		return Entry{}, false
	}
	return *c.entry, true
}

// Clear drops the entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
}

func (c *Cache) emptyFrame() Frame {
	return Frame{
		Title:          NoMediaTitle,
		Artist:         NoMediaArtist,
		Art:            artwork.Placeholder(),
		ArtPlaceholder: true,
		Background:     c.defaultColor,
	}
}

func (c *Cache) withPlaceholder(f Frame) Frame {
	f.Art = artwork.Placeholder()
	f.ArtPlaceholder = true
	f.Identity = artwork.Identity{}
	f.Background = c.defaultColor
	return f
}

// Must be called with lock held.
func (c *Cache) withEntry(f Frame) Frame {
	f.Art = c.entry.Image
	f.Identity = c.entry.Identity
	f.Background = c.entry.Color
	return f
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

type snapshot struct {
	token   media.Token
	app     string
	meta    media.Metadata
	status  media.Status
	actions media.Actions
}

// read copies the session fields once. A host panic is treated as no session.
func read(s media.Session) (snap snapshot, ok bool) {
	if s == nil {
		return snapshot{}, false
	}
	defer func() {
		if recover() != nil {
			snap, ok = snapshot{}, false
		}
	}()
	return snapshot{
		token:   s.Token(),
		app:     s.App(),
		meta:    s.Metadata(),
		status:  s.Status(),
		actions: s.Actions(),
	}, true
}
