package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor extracts a slog attribute from context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// LogHandlerDecorator wraps a slog.Handler and injects attributes from context.
// Extraction happens per record, so values bound to ctx late (the session
// token of a refresh, the request id of an SSE stream) are always current.
//
// An extracted attribute never duplicates a key the line already carries:
// keys passed to the log call or bound through Logger.With win over context.
type LogHandlerDecorator struct {
	next       slog.Handler
	extractors []ContextExtractor
	bound      map[string]struct{}
}

// NewLogHandlerDecorator creates a new decorated handler. Nil extractors are dropped.
func NewLogHandlerDecorator(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	clean := make([]ContextExtractor, 0, len(extractors))
	for _, ex := range extractors {
		if ex != nil {
			clean = append(clean, ex)
		}
	}
	return &LogHandlerDecorator{next: next, extractors: clean}
}

func (h *LogHandlerDecorator) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle adds context attributes whose keys are not yet present and
// delegates to the wrapped handler.
func (h *LogHandlerDecorator) Handle(ctx context.Context, rec slog.Record) error {
	if len(h.extractors) == 0 || ctx == nil {
		return h.next.Handle(ctx, rec)
	}

	var present map[string]struct{}
	for _, ex := range h.extractors {
		attr, ok := ex(ctx)
		if !ok {
			continue
		}
		if present == nil {
			present = h.keys(rec)
		}
		if _, dup := present[attr.Key]; dup {
			continue
		}
		present[attr.Key] = struct{}{}
		rec.AddAttrs(attr)
	}
	return h.next.Handle(ctx, rec)
}

// WithAttrs remembers the bound keys so context values do not repeat them.
func (h *LogHandlerDecorator) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := make(map[string]struct{}, len(h.bound)+len(attrs))
	for k := range h.bound {
		bound[k] = struct{}{}
	}
	for _, a := range attrs {
		bound[a.Key] = struct{}{}
	}
	return &LogHandlerDecorator{
		next:       h.next.WithAttrs(attrs),
		extractors: h.extractors,
		bound:      bound,
	}
}

// WithGroup starts a fresh key namespace: extracted attributes land inside
// the group, where no bound key can collide with them.
func (h *LogHandlerDecorator) WithGroup(name string) slog.Handler {
	return &LogHandlerDecorator{
		next:       h.next.WithGroup(name),
		extractors: h.extractors,
	}
}

func (h *LogHandlerDecorator) keys(rec slog.Record) map[string]struct{} {
	keys := make(map[string]struct{}, len(h.bound)+rec.NumAttrs())
	for k := range h.bound {
		keys[k] = struct{}{}
	}
	rec.Attrs(func(a slog.Attr) bool {
		keys[a.Key] = struct{}{}
		return true
	})
	return keys
}

type tokenKey struct{}

// WithToken stores the session token a log line refers to in ctx.
func WithToken[T ~string](ctx context.Context, token T) context.Context {
	return context.WithValue(ctx, tokenKey{}, string(token))
}

func tokenFromContext(ctx context.Context) (slog.Attr, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	if !ok || token == "" {
		return slog.Attr{}, false
	}
	return slog.String("token", token), true
}
