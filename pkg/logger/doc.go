// Package logger builds the slog loggers used across nowplaying.
//
// New returns a *slog.Logger configured through functional options: output
// format (text or json), level, static attributes and context extractors. The
// handler is wrapped with LogHandlerDecorator which injects attributes pulled
// from the context on every record; the session token stored with WithToken is
// always extracted.
//
//	log := logger.New(logger.WithDevelopment("nowplaying"))
//	ctx := logger.WithToken(context.Background(), session.Token())
//	log.InfoContext(ctx, "session selected", logger.App(session.App()))
//
// NewFromConfig maps the APP_ENV, APP_NAME, LOG_LEVEL and LOG_FORMAT
// environment settings onto the same options.
//
// Attribute helpers (Error, Token, App, Status, Action, Operation, Identity)
// keep key names consistent. Error returns an empty attribute for nil errors so
// it can be passed unconditionally.
package logger
