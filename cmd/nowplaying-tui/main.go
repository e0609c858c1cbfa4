// Command nowplaying-tui shows the now-playing widget in the terminal.
//
// It tracks the same session directory as the web server. Logs go to
// TUI_LOG_FILE since the terminal is taken by the widget.
package main

import (
	"context"
	"errors"
	"fmt"
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
	"github.com/dmitrymomot/nowplaying/pkg/tui"
)

type tuiConfig struct {
	LogFile string `env:"TUI_LOG_FILE" envDefault:"nowplaying-tui.log"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "nowplaying-tui:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		logCfg  logger.Config
		coreCfg nowplaying.Config
		hostCfg filehost.Config
		uiCfg   tuiConfig
	)
	if err := errors.Join(
		config.Load(&logCfg),
		config.Load(&coreCfg),
		config.Load(&hostCfg),
		config.Load(&uiCfg),
	); err != nil {
		return err
	}

	logFile, err := os.OpenFile(uiCfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	log, err := logger.NewFromConfig(logCfg, logger.WithOutput(logFile))
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

	svc, err := nowplaying.NewFromConfig(coreCfg, source, hub,
		nowplaying.WithLogger(log),
		nowplaying.WithRouterOptions(command.WithLauncher(source)),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	sub := hub.Subscribe(ctx)
	g.Go(func() error { return svc.Run(ctx) })
	g.Go(func() error { return source.Watch(ctx) })
	g.Go(func() error {
		defer cancel()
		return tui.Run(ctx, sub.Updates(), svc)
	})
	return g.Wait()
}
