// Package nowplaying mirrors the most relevant media session of a host onto
// a display surface and routes transport commands back to it.
//
// Service wires the pieces together around a single event loop:
//
//	host listener / session callbacks / commands --> queue --+
//	                                                        |--> loop --> registry, cache, presenter --> surface
//	palette extractor results --------------------> channel -+
//
// Host callbacks only enqueue, so they never block and never re-enter the
// loop. Registry updates, cache mutations and pushes all happen on the loop
// goroutine, one event at a time. The palette worker is the only other
// goroutine; its results are applied only while they still match the art on
// screen.
//
// Basic usage:
//
//	hub := broadcast.NewHub()
//	svc := nowplaying.New(source, hub, nowplaying.WithLogger(log))
//	defer svc.Close()
//
//	go svc.Run(ctx)
//	_ = svc.Dispatch(ctx, command.ActionPlayPause)
package nowplaying
