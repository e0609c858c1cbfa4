package nowplaying

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/nowplaying/pkg/artwork"
	"github.com/dmitrymomot/nowplaying/pkg/command"
	"github.com/dmitrymomot/nowplaying/pkg/palette"
	"github.com/dmitrymomot/nowplaying/pkg/render"
)

// Config holds the tunables of the render pipeline and command router.
type Config struct {
	MaxArtEdge        int           `env:"NOWPLAYING_MAX_ART_EDGE" envDefault:"512"`
	CornerRadius      int           `env:"NOWPLAYING_CORNER_RADIUS" envDefault:"28"`
	PinnedEdge        string        `env:"NOWPLAYING_PINNED_EDGE" envDefault:"left"`
	DefaultColor      string        `env:"NOWPLAYING_DEFAULT_COLOR" envDefault:"#2D2D2D"`
	PaletteSampleEdge int           `env:"NOWPLAYING_PALETTE_SAMPLE_EDGE" envDefault:"100"`
	PaletteMaxColors  int           `env:"NOWPLAYING_PALETTE_MAX_COLORS" envDefault:"16"`
	LaunchCacheSize   int           `env:"NOWPLAYING_LAUNCH_CACHE_SIZE" envDefault:"16"`
	PollInterval      time.Duration `env:"NOWPLAYING_POLL_INTERVAL" envDefault:"0s"`
	// FallbackURL is opened by OPEN_APP when no session resolves. Empty disables it.
	FallbackURL string `env:"NOWPLAYING_FALLBACK_URL"`
}

// Options converts cfg into service options.
func (c Config) Options() ([]Option, error) {
	edge, err := artwork.ParseEdge(c.PinnedEdge)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	col, err := render.ParseHexColor(c.DefaultColor)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	if c.MaxArtEdge <= 0 {
		return nil, fmt.Errorf("%w: max art edge must be positive", ErrInvalidConfig)
	}
	if c.CornerRadius < 0 {
		return nil, fmt.Errorf("%w: corner radius must not be negative", ErrInvalidConfig)
	}

	return []Option{
		WithPollInterval(c.PollInterval),
		WithRenderOptions(
			render.WithMaxArtEdge(c.MaxArtEdge),
			render.WithCornerRadius(c.CornerRadius),
			render.WithPinnedEdge(edge),
			render.WithDefaultColor(col),
		),
		WithPaletteOptions(
			palette.WithFallback(col),
			palette.WithSampleEdge(c.PaletteSampleEdge),
			palette.WithMaxColors(c.PaletteMaxColors),
		),
		WithRouterOptions(command.WithLaunchCacheSize(c.LaunchCacheSize)),
	}, nil
}
