package quality

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sleeptrack/internal/modules/sleep/domain"
	"sleeptrack/internal/modules/sleep/dto"
	"sleeptrack/internal/ui/theme"
	vmquality "sleeptrack/internal/viewmodel/quality"
)

type Recorder interface {
	RecordQuality(ctx context.Context, quality int) error
	AcknowledgeReturn()
	Subscribe(buffer int) (<-chan vmquality.State, func())
}

type StateMsg struct {
	State vmquality.State
}

type DoneMsg struct {
	Err error
}

// ReturnMsg tells the parent model the rating is stored and the tracker screen can come back.
type ReturnMsg struct {
	NightID int64
	Quality int
}

var labels = [domain.MaxQuality + 1]string{"awful", "poor", "so-so", "ok", "good", "great"}

type Model struct {
	rec         Recorder
	night       dto.NightOutput
	states      <-chan vmquality.State
	unsubscribe func()
	selected    int
	saving      bool
	err         string
}

func New(rec Recorder, night dto.NightOutput) Model {
	states, unsubscribe := rec.Subscribe(2)
	return Model{
		rec:         rec,
		night:       night,
		states:      states,
		unsubscribe: unsubscribe,
		selected:    domain.MaxQuality / 2,
	}
}

func (m Model) Init() tea.Cmd {
	return m.listen()
}

func (m Model) Close() {
	m.unsubscribe()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		if msg.State.ReadyToReturn {
			m.rec.AcknowledgeReturn()
			out := ReturnMsg{NightID: msg.State.NightID, Quality: msg.State.Quality}
			return m, tea.Batch(m.listen(), func() tea.Msg { return out })
		}
		return m, m.listen()

	case DoneMsg:
		m.saving = false
		if msg.Err != nil {
			m.err = "rating failed: " + msg.Err.Error()
		}

	case tea.KeyMsg:
		if m.saving {
			return m, nil
		}
		switch key := msg.String(); key {
		case "left", "h":
			m.selected = max(m.selected-1, domain.MinQuality)
		case "right", "l":
			m.selected = min(m.selected+1, domain.MaxQuality)
		case "enter":
			return m.Rate(m.selected)
		default:
			if q, err := strconv.Atoi(key); err == nil && domain.ValidateQuality(q) == nil {
				return m.Rate(q)
			}
		}
	}
	return m, nil
}

// Rate stores quality for the bound night.
func (m Model) Rate(quality int) (Model, tea.Cmd) {
	m.selected = quality
	m.saving = true
	m.err = ""
	rec := m.rec
	return m, func() tea.Msg {
		return DoneMsg{Err: rec.RecordQuality(context.Background(), quality)}
	}
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(fmt.Sprintf("How did you sleep? (night #%d)", m.night.ID)) + "\n\n")
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("%s → %s  %s",
		m.night.StartTime.Local().Format("Mon 15:04"),
		m.night.EndTime.Local().Format("15:04"),
		m.night.EndTime.Sub(m.night.StartTime).Round(time.Minute),
	)) + "\n\n")
	choices := make([]string, 0, len(labels))
	for q, label := range labels {
		style := theme.ButtonDisabled
		if q == m.selected {
			style = theme.ButtonSelected
		}
		choices = append(choices, style.Render(fmt.Sprintf("%d %s", q, label)))
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, choices...) + "\n\n")
	if m.saving {
		sb.WriteString(theme.Muted.Render("saving…") + "\n")
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
