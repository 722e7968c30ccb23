package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nvandessel/powerplay/internal/visualization"
)

// Styles holds the explorer's styles.
type Styles struct {
	Title    lipgloss.Style
	Control  lipgloss.Style
	Selected lipgloss.Style
	Value    lipgloss.Style
	Bounds   lipgloss.Style
	Summary  lipgloss.Style
	Error    lipgloss.Style
	Status   lipgloss.Style
}

// DefaultStyles returns the standard explorer styles.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(visualization.ColorAnalytical),
		Control:  lipgloss.NewStyle().PaddingLeft(2),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(visualization.ColorSimulated),
		Value:    lipgloss.NewStyle().Bold(true),
		Bounds:   lipgloss.NewStyle().Foreground(visualization.ColorAxis),
		Summary:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(visualization.ColorAxis).Padding(0, 1),
		Error:    lipgloss.NewStyle().Foreground(visualization.ColorTarget),
		Status:   lipgloss.NewStyle().Faint(true),
	}
}
