package command

import "errors"

var (
	ErrUnknownAction   = errors.New("command: unknown action")
	ErrNoActiveSession = errors.New("command: no active session")
	ErrActionDisabled  = errors.New("command: action not supported by session")
	ErrNothingToOpen   = errors.New("command: nothing to open")
	ErrIssueFailed     = errors.New("command: host rejected operation")
	ErrOpenFailed      = errors.New("command: open failed")
)
