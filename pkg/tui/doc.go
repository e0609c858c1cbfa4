// Package tui renders the now-playing widget in a terminal with bubbletea
// and lipgloss, and turns key presses into widget commands.
//
// Keys: space toggles playback, n and p skip, o opens the owning app, q
// quits. Disabled controls are dimmed and their keys ignored.
//
// The model reads snapshots from any channel, typically a broadcast
// subscriber:
//
//	sub := hub.Subscribe(ctx)
//	defer sub.Close()
//	err := tui.Run(ctx, sub.Updates(), service)
package tui
