package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// configCache stores parsed configuration copies keyed by type and prefix.
type configCache struct {
	mu     sync.RWMutex
	values map[string]any
}

var (
	globalCache = &configCache{values: make(map[string]any)}

	envFilesMu     sync.Mutex
	envFilesLoaded = make(map[string]bool)
)

// Option tweaks a single Load call.
type Option func(*loadOptions)

type loadOptions struct {
	files  []string
	prefix string
	fresh  bool
}

// WithEnvFiles loads the given dotenv files (once per path) before parsing.
// Missing files are ignored. Without this option the default ".env" is used.
func WithEnvFiles(paths ...string) Option {
	return func(o *loadOptions) { o.files = append(o.files, paths...) }
}

// WithPrefix parses variables with the given prefix, e.g. "NOWPLAYING_".
func WithPrefix(prefix string) Option {
	return func(o *loadOptions) { o.prefix = prefix }
}

// WithoutCache bypasses the per-type cache and re-reads the environment.
func WithoutCache() Option {
	return func(o *loadOptions) { o.fresh = true }
}

// Load parses environment variables into v using `env` struct tags.
// The first successful result for a type (and prefix) is cached; later calls
// return the cached copy unless WithoutCache is given.
//
//	type ServerConfig struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg ServerConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if len(o.files) == 0 {
		o.files = []string{".env"}
	}
	loadEnvFiles(o.files)

	key := getTypeName[T]() + "|" + o.prefix

	if !o.fresh {
		globalCache.mu.RLock()
		cached, ok := globalCache.values[key]
		globalCache.mu.RUnlock()
		if ok {
			*v = cached.(T)
			return nil
		}
	}

	var parsed T
	if err := env.ParseWithOptions(&parsed, env.Options{Prefix: o.prefix}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	globalCache.mu.Lock()
	if cached, ok := globalCache.values[key]; ok && !o.fresh {
		// Another goroutine won the race; keep the first value.
		parsed = cached.(T)
	} else {
		globalCache.values[key] = parsed
	}
	globalCache.mu.Unlock()

	*v = parsed
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// ResetCache drops every cached configuration. Intended for tests.
func ResetCache() {
	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()
	globalCache.values = make(map[string]any)
}

func loadEnvFiles(paths []string) {
	envFilesMu.Lock()
	defer envFilesMu.Unlock()

	for _, p := range paths {
		if envFilesLoaded[p] {
			continue
		}
		envFilesLoaded[p] = true
		// The file is optional; already-set variables win.
		_ = godotenv.Load(p)
	}
}

func getTypeName[T any]() string {
	t := reflect.TypeFor[T]()
	return t.PkgPath() + "." + t.String()
}
