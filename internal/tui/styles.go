package tui

import (
	"ai-study-planner/internal/plan"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#8B5CF6")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8B5CF6"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	urgentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F97316"))

	dayTabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#6B7280"))
	activeDayTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color("#3B82F6"))

	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F97316"))

	formStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#8B5CF6")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).MarginTop(1)
)

// typeStyle colours a session by its type.
func typeStyle(t plan.SessionType) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color()))
}

func subjectStyle(color string) lipgloss.Style {
	if color == "" {
		color = plan.TypeFree.Color()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}
