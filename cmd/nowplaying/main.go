// Command nowplaying serves the now-playing widget over HTTP.
//
// Sessions come from a directory of descriptors (see pkg/filehost). The
// widget is available at HTTP_ADDR, commands are accepted over HTTP and,
// when REDIS_URL is set, over Redis pub/sub, where snapshots are mirrored too.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/nowplaying"
	"github.com/dmitrymomot/nowplaying/pkg/broadcast"
	"github.com/dmitrymomot/nowplaying/pkg/command"
	"github.com/dmitrymomot/nowplaying/pkg/config"
	"github.com/dmitrymomot/nowplaying/pkg/filehost"
	"github.com/dmitrymomot/nowplaying/pkg/logger"
	"github.com/dmitrymomot/nowplaying/pkg/redis"
	"github.com/dmitrymomot/nowplaying/pkg/webui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("nowplaying stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		logCfg   logger.Config
		coreCfg  nowplaying.Config
		hostCfg  filehost.Config
		httpCfg  webui.Config
		redisCfg redis.Config
	)
	if err := errors.Join(
		config.Load(&logCfg),
		config.Load(&coreCfg),
		config.Load(&hostCfg),
		config.Load(&httpCfg),
		config.Load(&redisCfg),
	); err != nil {
		return err
	}

	log, err := logger.NewFromConfig(logCfg, logger.WithContextExtractors(webui.RequestIDExtractor()))
	if err != nil {
		return err
	}
	logger.SetAsDefault(log)

	if err := os.MkdirAll(hostCfg.Dir, 0o755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	source := filehost.NewFromConfig(hostCfg, filehost.WithLogger(log))

	hub := broadcast.NewHub(broadcast.WithLogger(log))
	defer func() { _ = hub.Close() }()

	routerOpts := []command.Option{command.WithLauncher(source)}
	if coreCfg.FallbackURL != "" {
		opener := filehost.Target(filehost.CommandOpener(hostCfg.OpenCommand), coreCfg.FallbackURL)
		routerOpts = append(routerOpts, command.WithFallbackOpener(opener))
	}
	svc, err := nowplaying.NewFromConfig(coreCfg, source, hub,
		nowplaying.WithLogger(log),
		nowplaying.WithRouterOptions(routerOpts...),
	)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	var checks []func(context.Context) error
	if redisCfg.Enabled() {
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			_ = svc.Close()
			return err
		}
		defer func() { _ = client.Close() }()
		checks = append(checks, redis.Healthcheck(client))

		listener := redis.NewCommandListener(client, svc,
			redis.WithChannel(redisCfg.CommandChannel),
			redis.WithListenerLogger(log),
		)
		publisher := redis.NewStatePublisher(client,
			redis.WithStateKey(redisCfg.StateKey),
			redis.WithStateChannel(redisCfg.StateChannel),
			redis.WithPublisherLogger(log),
		)
		sub := hub.Subscribe(ctx)
		g.Go(func() error { return listener.Run(ctx) })
		g.Go(func() error { return publisher.Run(ctx, sub.Updates()) })
	}

	srv := webui.NewFromConfig(httpCfg, hub, svc,
		webui.WithLogger(log),
		webui.WithReadinessChecks(checks...),
	)

	g.Go(func() error { return svc.Run(ctx) })
	g.Go(func() error { return source.Watch(ctx) })
	g.Go(func() error { return srv.Run(ctx) })

	log.InfoContext(ctx, "nowplaying started",
		slog.String("sessions", hostCfg.Dir),
		slog.String("addr", httpCfg.Addr),
		slog.Bool("redis", redisCfg.Enabled()),
	)
	return g.Wait()
}
