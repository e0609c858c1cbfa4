package media

import "errors"

var (
	// ErrPermissionDenied is returned when the host refuses access to its sessions.
	ErrPermissionDenied = errors.New("media: permission denied")

	// ErrSubscriptionDenied is returned when the host refuses to register a listener.
	ErrSubscriptionDenied = errors.New("media: subscription denied")

	// ErrUnsupportedOperation is returned by Issue for operations the session cannot perform.
	ErrUnsupportedOperation = errors.New("media: unsupported operation")

	// ErrSessionGone is returned when an operation targets a session the host already dropped.
	ErrSessionGone = errors.New("media: session no longer exists")
)
