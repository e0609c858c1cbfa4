// Package webui serves the now-playing widget to browsers and accepts
// commands over HTTP.
//
// Routes:
//
//	GET  /                  full page with the current widget
//	GET  /events            datastar SSE stream: widget fragment + signals
//	GET  /art.png           art of the latest snapshot (rounded or placeholder)
//	POST /actions/{action}  play_pause, next, prev, open_app
//	GET  /healthz           liveness, or readiness when checks are configured
//	GET  /metrics           prometheus exposition
//
// The page keeps a single SSE connection open. Every snapshot pushed to the
// broadcast hub is morphed into the "#widget" element and mirrored as
// datastar signals, so custom markup can bind to $title, $artist, $playing
// and $background without re-rendering the fragment.
//
// Server.Run owns the http.Server: it listens until the context is cancelled
// and then shuts down gracefully within the configured timeout.
//
//	srv := webui.NewFromConfig(cfg, hub, service, webui.WithLogger(log))
//	if err := srv.Run(ctx); err != nil {
//		return err
//	}
package webui
