package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sleeptrack/internal/ui/components"
	"sleeptrack/internal/ui/theme"
	qualityview "sleeptrack/internal/ui/views/quality"
	trackerview "sleeptrack/internal/ui/views/tracker"
)

// ─── ports ───────────────────────────────────────────────────────────────────

// RecorderHandle is a rating screen state holder the model can discard after use.
type RecorderHandle interface {
	qualityview.Recorder
	NightID() int64
	Close()
}

// RecorderFactory binds a new rating state holder to one night.
type RecorderFactory func(nightID int64) RecorderHandle

// ─── screens ─────────────────────────────────────────────────────────────────

type screenID int

const (
	screenTracker screenID = iota
	screenQuality
)

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Start   key.Binding
	Stop    key.Binding
	Clear   key.Binding
	Rate    key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start night")),
		Stop:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "stop night")),
		Clear:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear history")),
		Rate:    key.NewBinding(key.WithKeys("0", "1", "2", "3", "4", "5"), key.WithHelp("0-5", "rate quality")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Stop, k.Clear},
		{k.Rate},
		{k.Help, k.Palette, k.Quit},
	}
}

// paletteCommands are the commands executePalette understands.
var paletteCommands = []string{"night:start", "night:stop", "night:clear", "night:rate <0-5>", "quit"}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It routes between the tracking and
// rating screens; all state transitions live in the view-state holders.
type Model struct {
	newRecorder RecorderFactory

	trackView   trackerview.Model
	qualityView qualityview.Model
	recorder    RecorderHandle

	screen   screenID
	keys     keyMap
	help     help.Model
	showHelp bool
	palette  components.Palette
	status   string
	width    int
	height   int
}

func NewModel(tracker trackerview.Controller, newRecorder RecorderFactory) Model {
	return Model{
		newRecorder: newRecorder,
		trackView:   trackerview.New(tracker),
		screen:      screenTracker,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(paletteCommands...),
		status:      "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return m.trackView.Init()
}

// Shutdown releases subscriptions held by the screens.
func (m Model) Shutdown() {
	m.trackView.Close()
	m.closeRecorder()
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The palette intercepts all input while open.
	if m.palette.Visible() {
		if _, ok := msg.(tea.KeyMsg); ok {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 60))
		m.help.Width = m.width
		var cmd tea.Cmd
		m.trackView, cmd = m.trackView.Update(tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 3})
		return m, cmd

	case trackerview.RateRequestedMsg:
		m.closeRecorder()
		m.recorder = m.newRecorder(msg.Night.ID)
		m.qualityView = qualityview.New(m.recorder, msg.Night)
		m.screen = screenQuality
		m.status = fmt.Sprintf("night #%d stopped, rate it", m.recorder.NightID())
		return m, m.qualityView.Init()

	case qualityview.ReturnMsg:
		if m.recorder == nil || m.recorder.NightID() != msg.NightID {
			return m, nil
		}
		m.closeRecorder()
		m.screen = screenTracker
		m.status = fmt.Sprintf("night #%d rated %d", msg.NightID, msg.Quality)
		return m, nil

	case qualityview.StateMsg, qualityview.DoneMsg:
		if m.recorder == nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.qualityView, cmd = m.qualityView.Update(msg)
		return m, cmd

	case trackerview.DoneMsg:
		if msg.Err == nil {
			m.status = msg.Command + " done"
		}

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "?":
			m.showHelp = true
			return m, nil
		case ":":
			return m, m.palette.Open()
		}
		if m.screen == screenQuality {
			var cmd tea.Cmd
			m.qualityView, cmd = m.qualityView.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.trackView, cmd = m.trackView.Update(msg)
	return m, cmd
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).
		Render(theme.Hot.Render("sleeptrack") + "  " + theme.Muted.Render(m.screenLabel()))
	statusBar := m.renderStatusBar()
	contentH := max(m.height-lipgloss.Height(header)-lipgloss.Height(statusBar), 1)

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.screen == screenQuality:
		content = m.qualityView.View()
	default:
		content = m.trackView.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (m Model) screenLabel() string {
	if m.screen == screenQuality {
		return "Rate"
	}
	return "Tracker"
}

func (m Model) renderStatusBar() string {
	left := m.status
	right := theme.Muted.Render("?:help  :::palette  q:quit")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).
		Render(left + strings.Repeat(" ", gap) + right)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	var cmd tea.Cmd
	switch parts[0] {
	case "night:start":
		cmd = m.trackView.Start()
	case "night:stop":
		cmd = m.trackView.Stop()
	case "night:clear":
		cmd = m.trackView.Clear()
	case "night:rate":
		if m.screen != screenQuality {
			m.status = "no night waiting for a rating"
			return m, nil
		}
		if len(parts) < 2 {
			m.status = "usage: night:rate <0-5>"
			return m, nil
		}
		q, err := strconv.Atoi(parts[1])
		if err != nil {
			m.status = "invalid quality " + parts[1]
			return m, nil
		}
		m.qualityView, cmd = m.qualityView.Rate(q)
		return m, cmd
	case "quit":
		return m, tea.Quit
	default:
		m.status = "unknown command: " + parts[0]
		return m, nil
	}
	if cmd == nil {
		m.status = parts[0] + " is not available right now"
	}
	return m, cmd
}

func (m *Model) closeRecorder() {
	if m.recorder == nil {
		return
	}
	m.qualityView.Close()
	m.recorder.Close()
	m.recorder = nil
}
