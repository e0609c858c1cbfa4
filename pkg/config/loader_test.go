package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/nowplaying/pkg/config"
)

type defaultsConfig struct {
	Radius   int           `env:"TEST_CFG_RADIUS" envDefault:"28"`
	Color    string        `env:"TEST_CFG_COLOR" envDefault:"#2D2D2D"`
	Interval time.Duration `env:"TEST_CFG_INTERVAL" envDefault:"2s"`
}

type cachedConfig struct {
	Value string `env:"TEST_CFG_CACHED" envDefault:"default"`
}

type prefixedConfig struct {
	Edge int `env:"EDGE" envDefault:"512"`
}

type requiredConfig struct {
	Required string `env:"TEST_CFG_REQUIRED,required"`
}

type fileConfig struct {
	FromFile string `env:"TEST_CFG_FROM_FILE"`
}

func TestLoad_Defaults(t *testing.T) {
	config.ResetCache()

	var cfg defaultsConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, 28, cfg.Radius)
	assert.Equal(t, "#2D2D2D", cfg.Color)
	assert.Equal(t, 2*time.Second, cfg.Interval)
}

func TestLoad_Cached(t *testing.T) {
	config.ResetCache()
	t.Setenv("TEST_CFG_CACHED", "first")

	var first cachedConfig
	require.NoError(t, config.Load(&first))

	t.Setenv("TEST_CFG_CACHED", "second")

	var second cachedConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "first", second.Value)

	var fresh cachedConfig
	require.NoError(t, config.Load(&fresh, config.WithoutCache()))
	assert.Equal(t, "second", fresh.Value)
}

func TestLoad_Prefix(t *testing.T) {
	config.ResetCache()
	t.Setenv("NOWPLAYING_EDGE", "256")

	var cfg prefixedConfig
	require.NoError(t, config.Load(&cfg, config.WithPrefix("NOWPLAYING_")))
	assert.Equal(t, 256, cfg.Edge)
}

func TestLoad_MissingRequired(t *testing.T) {
	config.ResetCache()
	os.Unsetenv("TEST_CFG_REQUIRED")

	var cfg requiredConfig
	err := config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
	assert.Panics(t, func() { config.MustLoad(&cfg) })
}

func TestLoad_EnvFile(t *testing.T) {
	config.ResetCache()
	os.Unsetenv("TEST_CFG_FROM_FILE")
	t.Cleanup(func() { os.Unsetenv("TEST_CFG_FROM_FILE") })

	path := filepath.Join(t.TempDir(), ".env.test")
	require.NoError(t, os.WriteFile(path, []byte("TEST_CFG_FROM_FILE=loaded\n"), 0o600))

	var cfg fileConfig
	require.NoError(t, config.Load(&cfg, config.WithEnvFiles(path)))
	assert.Equal(t, "loaded", cfg.FromFile)
}

func TestLoad_NilPointer(t *testing.T) {
	var cfg *defaultsConfig
	assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
}
