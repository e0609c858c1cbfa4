package filehost

import "errors"

var (
	// ErrInvalidDescriptor is returned when a descriptor cannot be parsed or names an unusable token.
	ErrInvalidDescriptor = errors.New("filehost: invalid session descriptor")

	// ErrWatcherUnavailable is returned by Watch when fsnotify cannot be initialized.
	ErrWatcherUnavailable = errors.New("filehost: file watcher unavailable")

	// ErrOpenFailed is returned when the open command exits with an error.
	ErrOpenFailed = errors.New("filehost: open command failed")

	// ErrNoLaunchTarget is returned by a launch opener whose app no longer has a launch target.
	ErrNoLaunchTarget = errors.New("filehost: no launch target for app")
)
