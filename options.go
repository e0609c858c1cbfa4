package nowplaying

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/nowplaying/pkg/command"
	"github.com/dmitrymomot/nowplaying/pkg/palette"
	"github.com/dmitrymomot/nowplaying/pkg/render"
)

// Option configures a Service.
type Option func(*options)

type options struct {
	log          *slog.Logger
	pollInterval time.Duration
	render       []render.Option
	palette      []palette.Option
	router       []command.Option
}

// WithLogger sets the logger shared by every component.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithPollInterval refreshes the session list periodically, for hosts whose
// change notifications are unavailable or unreliable. Zero disables polling.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.pollInterval = d
		}
	}
}

// WithRenderOptions configures the render cache.
func WithRenderOptions(opts ...render.Option) Option {
	return func(o *options) { o.render = append(o.render, opts...) }
}

// WithPaletteOptions configures the palette extractor.
func WithPaletteOptions(opts ...palette.Option) Option {
	return func(o *options) { o.palette = append(o.palette, opts...) }
}

// WithRouterOptions configures the command router.
func WithRouterOptions(opts ...command.Option) Option {
	return func(o *options) { o.router = append(o.router, opts...) }
}
