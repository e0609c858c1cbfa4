package widget

// Affordance is the state of a single button.
type Affordance struct {
	Visible bool
	Enabled bool
}

// Actionable reports whether pressing the button may dispatch a command.
func (a Affordance) Actionable() bool { return a.Visible && a.Enabled }

// Controls holds the four widget buttons.
type Controls struct {
	PlayPause Affordance
	Next      Affordance
	Prev      Affordance
	Open      Affordance
}
