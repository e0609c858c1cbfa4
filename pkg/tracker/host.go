package tracker

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/nowplaying/pkg/media"
)

// Host calls are wrapped so a misbehaving host degrades instead of taking
// the event loop down.

func safeQuery(ctx context.Context, src media.Source) (sessions []media.Session, err error) {
	defer func() {
		if r := recover(); r != nil {
			sessions, err = nil, fmt.Errorf("%w: %v", ErrHostPanic, r)
		}
	}()
	return src.ActiveSessions(ctx)
}

func safeSubscribe(s media.Session, cb media.Callback) (unsubscribe func(), err error) {
	defer func() {
		if r := recover(); r != nil {
			unsubscribe, err = nil, fmt.Errorf("%w: %v", ErrHostPanic, r)
		}
	}()
	return s.Subscribe(cb)
}

func safeUnsubscribe(fn func()) (err error) {
	if fn == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHostPanic, r)
		}
	}()
	fn()
	return nil
}

// SafeStatus reads the session status, reporting StatusUnknown if the host panics.
func SafeStatus(s media.Session) (status media.Status) {
	defer func() {
		if recover() != nil {
			status = media.StatusUnknown
		}
	}()
	return s.Status()
}

// SafeActions reads the advertised actions, reporting ActionsNone if the host panics.
func SafeActions(s media.Session) (actions media.Actions) {
	defer func() {
		if recover() != nil {
			actions = media.ActionsNone
		}
	}()
	return s.Actions()
}

func safeToken(s media.Session) (token media.Token, ok bool) {
	defer func() {
		if recover() != nil {
			token, ok = "", false
		}
	}()
	return s.Token(), true
}
