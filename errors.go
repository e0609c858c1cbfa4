package nowplaying

import "errors"

var (
	ErrClosed         = errors.New("nowplaying: service is closed")
	ErrAlreadyRunning = errors.New("nowplaying: service is already running")
	ErrInvalidConfig  = errors.New("nowplaying: invalid configuration")
)
