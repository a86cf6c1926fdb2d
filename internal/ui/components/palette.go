package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sleeptrack/internal/ui/theme"
)

// PaletteSubmitMsg carries the confirmed command line.
type PaletteSubmitMsg struct{ Input string }

type PaletteCancelMsg struct{}

var (
	paletteBox = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Lavender).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)
	hintRow     = lipgloss.NewStyle().Foreground(theme.Subtext0)
	hintCurrent = lipgloss.NewStyle().Foreground(theme.Peach).Bold(true)
)

// Palette is the ":" command line. Tab completes to the first matching command.
type Palette struct {
	commands []string
	input    textinput.Model
	open     bool
	width    int
}

// NewPalette lists commands as "name [args]"; only the name is completed.
func NewPalette(commands ...string) Palette {
	in := textinput.New()
	in.Prompt = ": "
	in.Placeholder = "command"
	in.CharLimit = 48
	return Palette{commands: commands, input: in}
}

func (p Palette) Visible() bool { return p.open }

func (p *Palette) SetWidth(w int) { p.width = w }

func (p *Palette) Open() tea.Cmd {
	p.open = true
	p.input.Reset()
	return p.input.Focus()
}

func (p *Palette) close() {
	p.open = false
	p.input.Blur()
}

// Matches returns the commands whose name starts with the typed prefix.
func (p Palette) Matches() []string {
	typed := strings.ToLower(strings.TrimSpace(p.input.Value()))
	var out []string
	for _, c := range p.commands {
		if strings.HasPrefix(c, typed) || strings.HasPrefix(typed, commandName(c)+" ") {
			out = append(out, c)
		}
	}
	return out
}

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.open {
		return p, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.Type {
	case tea.KeyEsc:
		p.close()
		return p, func() tea.Msg { return PaletteCancelMsg{} }
	case tea.KeyEnter:
		line := strings.TrimSpace(p.input.Value())
		p.close()
		return p, func() tea.Msg { return PaletteSubmitMsg{Input: line} }
	case tea.KeyTab:
		if m := p.Matches(); len(m) > 0 {
			p.input.SetValue(commandName(m[0]) + " ")
			p.input.CursorEnd()
		}
		return p, nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Palette) View() string {
	if !p.open {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Commands") + "\n")
	sb.WriteString(p.input.View() + "\n\n")
	for i, c := range p.Matches() {
		style := hintRow
		if i == 0 {
			style = hintCurrent
		}
		sb.WriteString(style.Render("  "+c) + "\n")
	}
	w := p.width
	if w < 20 {
		w = 44
	}
	return paletteBox.Width(w - 2).Render(strings.TrimRight(sb.String(), "\n"))
}

func commandName(c string) string {
	name, _, _ := strings.Cut(c, " ")
	return name
}
