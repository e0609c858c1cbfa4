package redis

import "time"

// Config holds the Redis settings. An empty URL disables the integration.
type Config struct {
	// ConnectionURL has the form "redis://:password@localhost:6379/0".
	ConnectionURL  string        `env:"REDIS_URL"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`

	// CommandChannel receives inbound widget actions.
	CommandChannel string `env:"REDIS_COMMAND_CHANNEL" envDefault:"nowplaying:commands"`
	// StateKey holds the latest snapshot; StateChannel announces new ones.
	StateKey     string `env:"REDIS_STATE_KEY" envDefault:"nowplaying:state"`
	StateChannel string `env:"REDIS_STATE_CHANNEL" envDefault:"nowplaying:state:updates"`
}

// Enabled reports whether a connection URL is configured.
func (c Config) Enabled() bool { return c.ConnectionURL != "" }
