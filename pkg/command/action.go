package command

import (
	"strings"

	"github.com/dmitrymomot/nowplaying/pkg/media"
)

// Action is an inbound widget action.
type Action int

const (
	ActionUnknown Action = iota
	ActionPlayPause
	ActionNext
	ActionPrev
	ActionOpenApp
)

var actionNames = map[Action]string{
	ActionPlayPause: "PLAY_PAUSE",
	ActionNext:      "NEXT",
	ActionPrev:      "PREV",
	ActionOpenApp:   "OPEN_APP",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "UNKNOWN"
}

// Transport reports whether a controls playback rather than launching an app.
func (a Action) Transport() bool {
	return a == ActionPlayPause || a == ActionNext || a == ActionPrev
}

// ParseAction accepts the canonical names case-insensitively, with dashes or
// underscores, and qualified forms such as "com.example.widget.ACTION_NEXT".
func ParseAction(s string) (Action, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, "-", "_")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimPrefix(name, "ACTION_")

	switch name {
	case "PLAY_PAUSE", "PLAYPAUSE", "TOGGLE":
		return ActionPlayPause, nil
	case "NEXT", "SKIP_NEXT":
		return ActionNext, nil
	case "PREV", "PREVIOUS", "SKIP_PREVIOUS":
		return ActionPrev, nil
	case "OPEN_APP", "OPEN":
		return ActionOpenApp, nil
	}
	return ActionUnknown, ErrUnknownAction
}

// Pending is a resolved command: what was asked and what was done about it.
type Pending struct {
	Action    Action
	Token     media.Token
	Operation media.Operation
	// OpenedVia names the open-app resolution step that succeeded.
	OpenedVia string
}

// Issued reports whether a transport operation was sent to the host.
func (p Pending) Issued() bool { return p.Operation != 0 }
