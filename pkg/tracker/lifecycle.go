package tracker

// State is a lifecycle state of a tracked session.
type State string

const (
	StateDiscovered   State = "discovered"
	StateSubscribed   State = "subscribed"
	StateActive       State = "active"
	StateInactive     State = "inactive"
	StateUnsubscribed State = "unsubscribed"
)

func (s State) String() string { return string(s) }

// Event drives lifecycle transitions.
type Event string

const (
	EventSubscribe   Event = "subscribe"
	EventActivate    Event = "activate"
	EventDeactivate  Event = "deactivate"
	EventUnsubscribe Event = "unsubscribe"
)

func (e Event) String() string { return string(e) }

// transitions is indexed [from][event] -> to.
var transitions = map[State]map[Event]State{
	StateDiscovered: {
		EventSubscribe:   StateSubscribed,
		EventUnsubscribe: StateUnsubscribed,
	},
	StateSubscribed: {
		EventActivate:    StateActive,
		EventDeactivate:  StateInactive,
		EventUnsubscribe: StateUnsubscribed,
	},
	StateActive: {
		EventDeactivate:  StateInactive,
		EventUnsubscribe: StateUnsubscribed,
	},
	StateInactive: {
		EventActivate:    StateActive,
		EventUnsubscribe: StateUnsubscribed,
	},
}

// Lifecycle is the per-session state machine. Not safe for concurrent use;
// the owning Multiplexer serializes access.
type Lifecycle struct {
	current State
}

// NewLifecycle returns a lifecycle in StateDiscovered.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{current: StateDiscovered}
}

func (l *Lifecycle) Current() State { return l.current }

// CanFire reports whether ev has an edge from the current state.
func (l *Lifecycle) CanFire(ev Event) bool {
	_, ok := transitions[l.current][ev]
	return ok
}

// Fire moves to the next state or returns *ErrNoTransition.
func (l *Lifecycle) Fire(ev Event) error {
	next, ok := transitions[l.current][ev]
	if !ok {
		return &ErrNoTransition{State: l.current, Event: ev}
	}
	l.current = next
	return nil
}
