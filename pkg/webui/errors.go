package webui

import "errors"

var (
	// ErrStart indicates that the server failed to start.
	ErrStart = errors.New("webui: failed to start HTTP server")
	// ErrShutdown indicates that graceful shutdown failed.
	ErrShutdown = errors.New("webui: failed to shutdown HTTP server gracefully")
)
