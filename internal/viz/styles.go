package viz

import (
	"github.com/charmbracelet/lipgloss"
)

// styles holds the lipgloss styles derived from a theme.
type styles struct {
	canvas   lipgloss.Style
	stats    lipgloss.Style
	header   lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	selected lipgloss.Style
	awake    lipgloss.Style
	asleep   lipgloss.Style
	graph    lipgloss.Style
	help     lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Foreground(t.Canvas).Padding(1, 2),
		stats: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(statsWidth),
		header:   lipgloss.NewStyle().Foreground(t.Accent).Bold(true).MarginBottom(1),
		label:    lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:    lipgloss.NewStyle().Foreground(t.Text),
		selected: lipgloss.NewStyle().Foreground(t.Selected).Bold(true),
		awake:    lipgloss.NewStyle().Foreground(t.Awake).Bold(true),
		asleep:   lipgloss.NewStyle().Foreground(t.Asleep).Bold(true),
		graph:    lipgloss.NewStyle().Foreground(t.Accent).Padding(1, 0),
		help:     lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
	}
}
