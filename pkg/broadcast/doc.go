// Package broadcast fans widget snapshots out to any number of viewers.
//
// Hub implements widget.Surface. Every viewer sees the latest snapshot:
// a new subscriber immediately receives the last one pushed, and a slow
// subscriber never blocks the hub; an undelivered snapshot is replaced by the
// newer one instead of queueing up. Pushing a snapshot whose visible content
// equals the previous one is a no-op, so repeated identical pushes are free.
//
// Basic usage:
//
//	hub := broadcast.NewHub()
//	defer hub.Close()
//
//	sub := hub.Subscribe(ctx)
//	defer sub.Close()
//
//	for state := range sub.Updates() {
//		draw(state)
//	}
//
// The subscription ends when ctx is cancelled, Close is called on either the
// subscriber or the hub.
package broadcast
