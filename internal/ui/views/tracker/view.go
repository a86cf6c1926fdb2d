package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sleeptrack/internal/modules/sleep/dto"
	"sleeptrack/internal/ui/theme"
	vmtracker "sleeptrack/internal/viewmodel/tracker"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Controller interface {
	Initialize(ctx context.Context) error
	StartTracking(ctx context.Context) error
	StopTracking(ctx context.Context) error
	ClearAll(ctx context.Context) error
	AcknowledgeNavigation()
	AcknowledgeNotice()
	Subscribe(buffer int) (<-chan vmtracker.State, func())
}

// ─── messages ────────────────────────────────────────────────────────────────

// StateMsg carries a snapshot published by the controller.
type StateMsg struct {
	State vmtracker.State
}

// DoneMsg reports the outcome of a controller command.
type DoneMsg struct {
	Command string
	Err     error
}

// RateRequestedMsg asks the parent model to open the rating screen.
type RateRequestedMsg struct {
	Night dto.NightOutput
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	ctrl        Controller
	states      <-chan vmtracker.State
	unsubscribe func()
	state       vmtracker.State
	history     viewport.Model
	notice      string
	err         string
	width       int
	height      int
}

func New(ctrl Controller) Model {
	states, unsubscribe := ctrl.Subscribe(4)
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Foreground(theme.Text)
	return Model{
		ctrl:        ctrl,
		states:      states,
		unsubscribe: unsubscribe,
		history:     vp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listen(), m.run("initialize", m.ctrl.Initialize))
}

// Close detaches the view from the controller.
func (m Model) Close() {
	m.unsubscribe()
}

func (m Model) State() vmtracker.State { return m.state }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.history.Width = max(msg.Width-4, 10)
		m.history.Height = max(msg.Height-10, 3)

	case StateMsg:
		m.state = msg.State
		m.history.SetContent(historyContent(msg.State))
		cmds = append(cmds, m.listen())
		if msg.State.TransientNotice {
			m.notice = "All nights cleared"
			m.ctrl.AcknowledgeNotice()
		}
		if msg.State.NavigateToRating != nil {
			night := *msg.State.NavigateToRating
			m.ctrl.AcknowledgeNavigation()
			cmds = append(cmds, func() tea.Msg { return RateRequestedMsg{Night: night} })
		}

	case DoneMsg:
		if msg.Err != nil {
			m.err = fmt.Sprintf("%s failed: %v", msg.Command, msg.Err)
		} else {
			m.err = ""
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "s":
			if cmd := m.Start(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		case "t":
			if cmd := m.Stop(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		case "c":
			if cmd := m.Clear(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		default:
			var cmd tea.Cmd
			m.history, cmd = m.history.Update(msg)
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

// Start, Stop and Clear return nil when the action is not currently offered.
func (m *Model) Start() tea.Cmd {
	if !m.state.StartVisible {
		return nil
	}
	m.notice = ""
	return m.run("start", m.ctrl.StartTracking)
}

func (m *Model) Stop() tea.Cmd {
	if !m.state.StopVisible {
		return nil
	}
	return m.run("stop", m.ctrl.StopTracking)
}

func (m *Model) Clear() tea.Cmd {
	if !m.state.ClearVisible {
		return nil
	}
	return m.run("clear", m.ctrl.ClearAll)
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Tonight") + "\n\n")
	if t := m.state.Tonight; t != nil && t.Open {
		sb.WriteString(theme.Hot.Render("● sleeping since "+t.StartTime.Local().Format("15:04")) + "\n\n")
	} else {
		sb.WriteString(theme.Muted.Render("no night in progress") + "\n\n")
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		button("s start", m.state.StartVisible),
		button("t stop", m.state.StopVisible),
		button("c clear", m.state.ClearVisible),
	) + "\n\n")
	sb.WriteString(theme.Title.Render("History") + "\n")
	sb.WriteString(m.history.View() + "\n")
	if m.notice != "" {
		sb.WriteString(theme.Notice.Render(m.notice) + "\n")
	}
	if m.err != "" {
		sb.WriteString(theme.Error.Render(m.err) + "\n")
	}
	return sb.String()
}

func (m Model) listen() tea.Cmd {
	states := m.states
	return func() tea.Msg {
		state, ok := <-states
		if !ok {
			return nil
		}
		return StateMsg{State: state}
	}
}

func (m Model) run(command string, op func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return DoneMsg{Command: command, Err: op(context.Background())}
	}
}

func button(label string, enabled bool) string {
	if enabled {
		return theme.Button.Render(label)
	}
	return theme.ButtonDisabled.Render(label)
}

func historyContent(s vmtracker.State) string {
	if s.History == "" {
		return theme.Muted.Render("no nights recorded")
	}
	return s.History
}
