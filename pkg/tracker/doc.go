// Package tracker keeps the set of host media sessions the application is
// watching and decides which one is active.
//
// Registry owns the tracked set and the selection rule: the first session
// with status playing in host order wins, otherwise the first session,
// otherwise none. Selection is recomputed from scratch on every refresh.
//
// Multiplexer keeps exactly one host subscription per tracked session. After
// every refresh its token set equals the registry's tracked set: removed
// sessions are unsubscribed immediately, new ones subscribed, and unchanged
// ones left alone. Callbacks only forward events to a Sink; they never touch
// tracker state from the host delivery goroutine.
//
// Each tracked session carries a Lifecycle:
//
//	Discovered -> Subscribed -> {Active | Inactive} -> Unsubscribed
//
// Basic usage:
//
//	mux := tracker.NewMultiplexer(queue.Post)
//	reg := tracker.NewRegistry(source, mux, tracker.WithLogger(log))
//
//	changed, err := reg.Refresh(ctx)
//	if errors.Is(err, tracker.ErrRefreshFailed) {
//		// last known set is kept
//	}
//	active := reg.Active()
package tracker
