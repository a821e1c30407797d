package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a color scheme for the timer
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Text      lipgloss.Color
}

var themes = []Theme{
	{Name: "purple", Primary: "#8B5CF6", Secondary: "#A78BFA", Text: "#F5F3FF"},
	{Name: "blue", Primary: "#3B82F6", Secondary: "#60A5FA", Text: "#EFF6FF"},
	{Name: "green", Primary: "#10B981", Secondary: "#34D399", Text: "#ECFDF5"},
	{Name: "honey", Primary: "#F59E0B", Secondary: "#FBBF24", Text: "#92400E"},
}

// themeIndex returns the position of name in themes, defaulting to purple
func themeIndex(name string) int {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, t := range themes {
		if t.Name == name {
			return i
		}
	}
	return 0
}

type styles struct {
	title     lipgloss.Style
	clock     lipgloss.Style
	tab       lipgloss.Style
	activeTab lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	dotOn     lipgloss.Style
	frame     lipgloss.Style
	popup     lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary),
		clock: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Secondary).
			Padding(1, 0),
		tab: lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1),
		activeTab: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text).
			Background(t.Primary).
			Padding(0, 1),
		label: lipgloss.NewStyle().
			Foreground(colorMuted),
		value: lipgloss.NewStyle().
			Foreground(t.Secondary),
		dotOn: lipgloss.NewStyle().
			Foreground(t.Primary),
		frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary),
		popup: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Secondary).
			Padding(1, 2),
	}
}
