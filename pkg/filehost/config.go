package filehost

import "time"

// Config holds the filehost settings.
type Config struct {
	Dir         string        `env:"FILEHOST_DIR" envDefault:"./sessions"`
	Debounce    time.Duration `env:"FILEHOST_DEBOUNCE" envDefault:"100ms"`
	OpenCommand string        `env:"FILEHOST_OPEN_COMMAND" envDefault:"xdg-open"`
}

// NewFromConfig creates a Source from cfg. Explicit options are applied after
// the config values.
func NewFromConfig(cfg Config, opts ...Option) *Source {
	base := []Option{WithDebounce(cfg.Debounce)}
	if cfg.OpenCommand != "" {
		base = append(base, WithOpenFunc(CommandOpener(cfg.OpenCommand)))
	}
	return New(cfg.Dir, append(base, opts...)...)
}
