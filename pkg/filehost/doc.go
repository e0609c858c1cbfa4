// Package filehost is a media.Source backed by a directory of session
// descriptors. It lets a player (or a script) publish what it is playing by
// writing small JSON or YAML files, and receive transport commands by
// reading an append-only operations file.
//
// A descriptor looks like this:
//
//	token: spotify-1
//	app: com.spotify.client
//	title: Song
//	artist: Artist
//	art: covers/song.png
//	status: playing
//	actions: [play_pause, skip_next, skip_previous]
//	order: 1
//	open: spotify:track:1
//	launch: spotify
//
// The token defaults to the file name without extension. Art paths are
// resolved relative to the watched directory; PNG and JPEG are supported.
// Sessions are ordered by Order and then by file name, which is the host
// order the tracker selects from.
//
// Issue appends the operation name to "<token>.ops" in the same directory.
//
// # Watching
//
// Watch runs an fsnotify loop until the context is cancelled. Changes to
// descriptors or images are coalesced for the configured debounce interval,
// then the directory is reloaded: existing sessions keep their handle and
// fire status or metadata events, and listeners receive the new list when
// the session set changed.
//
// # Error Handling
//
// An unreadable directory is reported as media.ErrPermissionDenied. A
// missing directory is an empty session list. Invalid descriptors are
// logged and skipped.
package filehost
