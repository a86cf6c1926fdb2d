package theme

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha, the darkest flavour, so the screen stays dim at night.
var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text).
		Padding(1)

	Title  = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted  = lipgloss.NewStyle().Foreground(Subtext0)
	Hot    = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Notice = lipgloss.NewStyle().Foreground(Green)
	Error  = lipgloss.NewStyle().Foreground(Red)

	Button = lipgloss.NewStyle().
		Foreground(Base).
		Background(Lavender).
		Padding(0, 2).
		MarginRight(1)
	ButtonDisabled = Button.
			Foreground(Surface1).
			Background(Surface0)
	ButtonSelected = Button.Background(Peach)
)
