package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/zorak1103/conman/internal/workload"
)

// Theme holds the styles used by the dashboard.
type Theme struct {
	Header   lipgloss.Style
	Column   lipgloss.Style
	Selected lipgloss.Style
	Help     lipgloss.Style
	Notice   lipgloss.Style
	Error    lipgloss.Style
	Badge    lipgloss.Style
	States   map[workload.State]lipgloss.Style
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7")),
	Column:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a9b1d6")),
	Selected: lipgloss.NewStyle().Background(lipgloss.Color("#283457")).Foreground(lipgloss.Color("#c0caf5")),
	Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89")),
	Notice:   lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a")),
	Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e")),
	Badge:    lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("#3b4261")).Foreground(lipgloss.Color("#c0caf5")),
	States: map[workload.State]lipgloss.Style{
		workload.StateRunning: lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a")),
		workload.StateCreated: lipgloss.NewStyle().Foreground(lipgloss.Color("#7dcfff")),
		workload.StatePaused:  lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68")),
		workload.StateExited:  lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89")),
		workload.StateDead:    lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e")),
	},
}

func (t Theme) state(s workload.State) lipgloss.Style {
	if style, ok := t.States[s]; ok {
		return style
	}
	return lipgloss.NewStyle()
}
