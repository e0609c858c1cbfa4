package tui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dmitrymomot/nowplaying/pkg/command"
	"github.com/dmitrymomot/nowplaying/pkg/render"
	"github.com/dmitrymomot/nowplaying/pkg/widget"
)

// Dispatcher enqueues widget commands.
type Dispatcher interface {
	Dispatch(ctx context.Context, a command.Action) error
}

// StateMsg carries a new snapshot into the model.
type StateMsg widget.RenderState

type closedMsg struct{}

type dispatchedMsg struct {
	action command.Action
	err    error
}

// Model is the bubbletea model of the widget.
type Model struct {
	ctx        context.Context
	updates    <-chan widget.RenderState
	dispatcher Dispatcher

	state widget.RenderState
	has   bool
	width int
	err   error
}

// New creates a model fed by updates.
func New(ctx context.Context, updates <-chan widget.RenderState, d Dispatcher) Model {
	return Model{ctx: ctx, updates: updates, dispatcher: d}
}

// State returns the snapshot currently shown.
func (m Model) State() (widget.RenderState, bool) { return m.state, m.has }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.waitForState()
}

func (m Model) waitForState() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		state, ok := <-updates
		if !ok {
			return closedMsg{}
		}
		return StateMsg(state)
	}
}

func (m Model) dispatch(a command.Action) tea.Cmd {
	ctx, d := m.ctx, m.dispatcher
	return func() tea.Msg {
		return dispatchedMsg{action: a, err: d.Dispatch(ctx, a)}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		m.state, m.has = widget.RenderState(msg), true
		return m, m.waitForState()
	case closedMsg:
		return m, tea.Quit
	case dispatchedMsg:
		m.err = msg.err
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var (
		a   command.Action
		aff widget.Affordance
	)
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ", "space":
		a, aff = command.ActionPlayPause, m.state.Controls.PlayPause
	case "n":
		a, aff = command.ActionNext, m.state.Controls.Next
	case "p":
		a, aff = command.ActionPrev, m.state.Controls.Prev
	case "o":
		a, aff = command.ActionOpenApp, m.state.Controls.Open
	default:
		return m, nil
	}
	if !aff.Actionable() || m.dispatcher == nil {
		return m, nil
	}
	return m, m.dispatch(a)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.has {
		return appStyle.Render("waiting for the first snapshot...") + "\n"
	}
	s := m.state

	meta := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(s.Title),
		artistStyle.Render(s.Artist),
		"",
		appStyle.Render(appLine(s)),
		"",
		m.controls(),
	)
	body := meta
	if art := thumbnail(s.Art); art != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, art, "  ", meta)
	}

	card := cardStyle.BorderForeground(lipgloss.Color(render.HexColor(s.Background)))
	if m.width > 4 {
		card = card.MaxWidth(m.width)
	}

	var sb strings.Builder
	sb.WriteString(card.Render(body))
	sb.WriteByte('\n')
	if m.err != nil && !errors.Is(m.err, context.Canceled) {
		sb.WriteString(errorStyle.Render(m.err.Error()))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func appLine(s widget.RenderState) string {
	if !s.HasSession {
		return "no active session"
	}
	return s.App + " - " + s.Status.String()
}

func (m Model) controls() string {
	c := m.state.Controls
	play := "space play"
	if m.state.PlayIcon == widget.IconPause {
		play = "space pause"
	}
	parts := make([]string, 0, 5)
	for _, item := range []struct {
		label string
		aff   widget.Affordance
	}{
		{"p prev", c.Prev},
		{play, c.PlayPause},
		{"n next", c.Next},
		{"o open", c.Open},
	} {
		if !item.aff.Visible {
			continue
		}
		style := keyStyle
		if !item.aff.Enabled {
			style = disabledStyle
		}
		parts = append(parts, style.Render(item.label))
	}
	parts = append(parts, disabledStyle.Render("q quit"))
	return strings.Join(parts, "  ")
}

// Run starts a full-screen program and blocks until the user quits, ctx is
// cancelled or updates is closed.
func Run(ctx context.Context, updates <-chan widget.RenderState, d Dispatcher, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	_, err := tea.NewProgram(New(ctx, updates, d), opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
