// Package media defines the host-facing contracts of the now-playing core:
// playback sessions, the source that enumerates them, and the optional
// helpers used to bring the owning application to the foreground.
//
// The package deliberately contains no selection or rendering logic. It only
// describes what a host environment has to provide:
//
//   - Source enumerates the currently active sessions and notifies listeners
//     whenever that set changes.
//   - Session is a handle to one playback context. It exposes metadata,
//     playback status, the bitmask of supported transport actions, a
//     per-session event subscription and a way to issue transport operations.
//   - Opener, Launcher and NotificationLookup resolve "open the app" requests.
//
// # In-memory host
//
// MemorySource and MemorySession implement the contracts entirely in memory.
// They are used by tests and demos and are safe for concurrent use:
//
//	src := media.NewMemorySource()
//	player := media.NewMemorySession("com.example.player",
//		media.WithTitle("Song", "Artist"),
//		media.WithStatus(media.StatusPlaying),
//		media.WithActions(media.ActionPlayPause|media.ActionSkipNext),
//	)
//	src.SetSessions(player)
//
// # Error Handling
//
// Source implementations report a missing notification-access grant with
// ErrPermissionDenied. Callers treat it as non-fatal.
package media
