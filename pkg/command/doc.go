// Package command turns inbound widget actions into host operations.
//
// Action is a closed set: PlayPause, Next, Prev and OpenApp. Router resolves
// an action against the active session:
//
//   - PlayPause issues pause when the session is playing and play otherwise;
//   - Next and Prev are issued only when the session advertises them;
//   - OpenApp tries the session's own open handle, then a matching
//     notification, then an application launcher, then an optional fallback.
//
// When no session is active a transport action triggers exactly one refresh
// and is retried once; if there is still nothing to control the action is a
// no-op. Errors returned by Dispatch are meant for logs and metrics only.
//
// Every dispatch re-reads live session state, so duplicate deliveries of the
// same action are harmless.
package command
