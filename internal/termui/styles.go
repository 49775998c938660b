// Package termui renders assistant turns for the terminal commands.
package termui

import "github.com/charmbracelet/lipgloss"

var (
	accent  = lipgloss.Color("#2e9e6b")
	muted   = lipgloss.Color("#8a8a8a")
	warning = lipgloss.Color("#d7a33a")
	danger  = lipgloss.Color("#d75f5f")
)

type Styles struct {
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Prompt   lipgloss.Style
	Panel    lipgloss.Style
	Layer    lipgloss.Style
	Progress lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
}

func NewStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(muted),

		Prompt: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),

		Panel: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted),

		Layer: lipgloss.NewStyle().
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(accent),

		Progress: lipgloss.NewStyle().
			Foreground(muted).
			Italic(true),

		Warning: lipgloss.NewStyle().
			Foreground(warning).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(danger).
			Bold(true),
	}
}
