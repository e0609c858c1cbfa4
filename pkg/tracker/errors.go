package tracker

import (
	"errors"
	"fmt"
)

var (
	ErrRefreshFailed = errors.New("tracker: refresh failed")
	ErrHostPanic     = errors.New("tracker: host call panicked")
)

// ErrNoTransition indicates the lifecycle has no edge for the event in its current state.
type ErrNoTransition struct {
	State State
	Event Event
}

func (e *ErrNoTransition) Error() string {
	return fmt.Sprintf("tracker: no transition from state '%s' for event '%s'", e.State, e.Event)
}

func IsNoTransition(err error) bool {
	var e *ErrNoTransition
	return errors.As(err, &e)
}
