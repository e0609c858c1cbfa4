package webui

import (
	"encoding/json"
	"errors"
	"image/png"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/dmitrymomot/nowplaying/pkg/command"
	"github.com/dmitrymomot/nowplaying/pkg/logger"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(s.logRequests)

	r.Get("/", s.handlePage)
	r.Get("/events", s.handleEvents)
	r.Get("/art.png", s.handleArt)
	r.Post("/actions/{action}", s.handleAction)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	state, _ := s.snapshots.Last()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := Page(state).Render(r.Context(), w); err != nil {
		s.logger.ErrorContext(r.Context(), "page render failed", logger.Error(err))
	}
}

// handleEvents streams every snapshot until the client goes away or the
// hub closes.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sub := s.snapshots.Subscribe(ctx)
	defer func() { _ = sub.Close() }()

	sse := datastar.NewSSE(w, r)
	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-sub.Updates():
			if !ok {
				return
			}
			if err := sse.PatchElementTempl(Widget(state),
				datastar.WithSelector("#"+WidgetID),
				datastar.WithMode(datastar.ElementPatchModeOuter),
			); err != nil {
				s.logger.DebugContext(ctx, "event stream closed", logger.Error(err))
				return
			}
			data, err := json.Marshal(signals(state))
			if err != nil {
				s.logger.ErrorContext(ctx, "signals encoding failed", logger.Error(err))
				continue
			}
			if err := sse.PatchSignals(data); err != nil {
				s.logger.DebugContext(ctx, "event stream closed", logger.Error(err))
				return
			}
		}
	}
}

func (s *Server) handleArt(w http.ResponseWriter, r *http.Request) {
	state, ok := s.snapshots.Last()
	if !ok || state.Art == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := png.Encode(w, state.Art); err != nil {
		s.logger.ErrorContext(r.Context(), "art encoding failed", logger.Error(err))
	}
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	a, err := command.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.dispatcher.Dispatch(r.Context(), a); err != nil {
		s.logger.WarnContext(r.Context(), "action rejected", logger.Action(a), logger.Error(err))
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth answers "ALIVE" without checks and "READY"/"NOT_READY" with them.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if len(s.checks) == 0 {
		_, _ = w.Write([]byte("ALIVE"))
		return
	}
	var errs []error
	for _, check := range s.checks {
		if err := check(r.Context()); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.ErrorContext(r.Context(), "readiness check failed", logger.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("NOT_READY"))
		return
	}
	_, _ = w.Write([]byte("READY"))
}
