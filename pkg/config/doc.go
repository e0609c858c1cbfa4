// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv (optional dotenv files, loaded once per
// path, never overriding variables that are already set) and
// github.com/caarlos0/env/v11 (struct tag parsing). Each configuration type is
// parsed once and cached; WithoutCache forces a fresh read.
//
//	var cfg nowplaying.Config
//	config.MustLoad(&cfg)
//
//	var redisCfg redis.Config
//	if err := config.Load(&redisCfg, config.WithEnvFiles(".env.local")); err != nil {
//		return err
//	}
//
// Every package that needs settings exposes a Config struct with `env` tags and
// a NewFromConfig constructor; this package only does the loading.
package config
