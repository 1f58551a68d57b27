package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Canvas   lipgloss.Style
	Panel    lipgloss.Style
	Header   lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Selected lipgloss.Style
	Graph    lipgloss.Style
	Help     lipgloss.Style
	Status   lipgloss.Style
	Warning  lipgloss.Style
}

func (t Theme) Styles() Styles {
	return Styles{
		Canvas: lipgloss.NewStyle().Foreground(t.Contour).Padding(1, 2),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(panelWidth),
		Header:   lipgloss.NewStyle().Foreground(t.Accent).Bold(true).MarginBottom(1),
		Label:    lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		Value:    lipgloss.NewStyle().Foreground(t.Text),
		Selected: lipgloss.NewStyle().Foreground(t.Selected).Bold(true),
		Graph:    lipgloss.NewStyle().Foreground(t.Contour).Padding(1, 0),
		Help:     lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		Status:   lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Warning:  lipgloss.NewStyle().Foreground(t.Warning),
	}
}

// Separator draws a muted rule of the given width.
func (s Styles) Separator(width int) string {
	rule := s.Label.UnsetWidth()
	if width < 7 {
		return rule.Render(strings.Repeat("─", max(width, 0)))
	}
	mid := width / 2
	return rule.Render(strings.Repeat("─", mid-3) + " ◆ " + strings.Repeat("─", width-mid-3))
}
