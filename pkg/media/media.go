package media

import (
	"image"
	"strings"
)

// Token uniquely identifies a playback session for as long as the host keeps it.
type Token string

func (t Token) String() string { return string(t) }

// Status is the playback state reported by the host.
type Status int

const (
	StatusUnknown Status = iota
	StatusStopped
	StatusPaused
	StatusPlaying
)

func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusPaused:
		return "paused"
	case StatusPlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// ParseStatus maps a textual status to Status. Unrecognized values map to StatusUnknown.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stopped":
		return StatusStopped
	case "paused":
		return StatusPaused
	case "playing":
		return StatusPlaying
	default:
		return StatusUnknown
	}
}

// Actions is the bitmask of transport actions a session advertises.
type Actions uint32

const (
	ActionPlay Actions = 1 << iota
	ActionPause
	ActionPlayPause
	ActionSkipNext
	ActionSkipPrevious

	ActionsNone Actions = 0
	ActionsAll          = ActionPlay | ActionPause | ActionPlayPause | ActionSkipNext | ActionSkipPrevious
)

// Has reports whether every bit of a is set.
func (s Actions) Has(a Actions) bool {
	return a != 0 && s&a == a
}

var actionNames = []struct {
	bit  Actions
	name string
}{
	{ActionPlay, "play"},
	{ActionPause, "pause"},
	{ActionPlayPause, "play_pause"},
	{ActionSkipNext, "skip_next"},
	{ActionSkipPrevious, "skip_previous"},
}

func (s Actions) String() string {
	if s == 0 {
		return "none"
	}
	parts := make([]string, 0, len(actionNames))
	for _, n := range actionNames {
		if s&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseActions builds a bitmask from names such as "play_pause" or "skip_next".
// Unknown names are ignored.
func ParseActions(names ...string) Actions {
	var out Actions
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "all" {
			out |= ActionsAll
			continue
		}
		for _, n := range actionNames {
			if n.name == name {
				out |= n.bit
			}
		}
	}
	return out
}

// Operation is a transport command that can be issued to a session.
type Operation int

const (
	OpPlay Operation = iota + 1
	OpPause
	OpSkipNext
	OpSkipPrevious
)

func (o Operation) String() string {
	switch o {
	case OpPlay:
		return "play"
	case OpPause:
		return "pause"
	case OpSkipNext:
		return "skip_next"
	case OpSkipPrevious:
		return "skip_previous"
	default:
		return "unknown"
	}
}

// Art is album artwork as delivered by the host.
// Key is a host-provided content key (URL, path plus modification time, hash).
// It may be empty, in which case consumers derive an identity from the pixels.
type Art struct {
	Image image.Image
	Key   string
}

// Metadata describes the currently loaded item of a session.
// Empty strings mean the host did not provide the field.
type Metadata struct {
	Title  string
	Artist string
	Art    *Art
}

// HasArt reports whether the metadata carries a decodable image.
func (m Metadata) HasArt() bool {
	return m.Art != nil && m.Art.Image != nil
}

// EventKind distinguishes per-session notifications.
type EventKind int

const (
	EventStatus EventKind = iota + 1
	EventMetadata
)

func (k EventKind) String() string {
	switch k {
	case EventStatus:
		return "status"
	case EventMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

// SessionEvent is delivered to a Callback when a session changes.
// Status carries the status observed at delivery time for both kinds.
type SessionEvent struct {
	Token  Token
	Kind   EventKind
	Status Status
}
