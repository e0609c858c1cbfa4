package logger

import (
	"fmt"
	"log/slog"
	"time"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Token records a session token under the key "token".
func Token[T ~string](token T) slog.Attr {
	return slog.String("token", string(token))
}

// App records the owning application identity under the key "app".
func App(app string) slog.Attr {
	return slog.String("app", app)
}

// Status records a playback status under the key "status".
func Status(status fmt.Stringer) slog.Attr {
	return slog.String("status", status.String())
}

// Action records an inbound action name under the key "action".
func Action(action fmt.Stringer) slog.Attr {
	return slog.String("action", action.String())
}

// Operation records a transport operation under the key "operation".
func Operation(op fmt.Stringer) slog.Attr {
	return slog.String("operation", op.String())
}

// Identity records an art identity under the key "art".
func Identity(id fmt.Stringer) slog.Attr {
	return slog.String("art", id.String())
}

// Count records a size under the key "count".
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
