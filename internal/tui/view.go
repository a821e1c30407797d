package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/valentindosimont/pomodoro/internal/cue"
	"github.com/valentindosimont/pomodoro/internal/timer"
)

// Colors
var (
	colorUrgent = lipgloss.Color("#FF4444")
	colorMuted  = lipgloss.Color("#666666")
)

// Styles
var (
	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorUrgent)
)

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	innerWidth := m.width - 2

	sections := []string{
		m.viewHeader(innerWidth),
		m.viewTabs(),
		m.viewClock(),
		m.progress.ViewAs(m.state.Progress()),
		m.viewDots(),
		"",
		m.viewSettings(innerWidth),
		m.viewToday(innerWidth),
	}
	if m.editMode {
		sections = append(sections, "", m.viewEditor())
	}
	if m.lastError != nil {
		sections = append(sections, "", errorStyle.Render(truncate(m.lastError.Error(), innerWidth)))
	}
	sections = append(sections, "", m.help.View(m.keys))

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)

	frame := m.styles.frame.
		Width(innerWidth).
		Height(m.height - 2).
		Align(lipgloss.Center)

	view := frame.Render(content)

	switch {
	case m.showPermission:
		view = m.overlayPopup(view, m.viewPermission())
	case m.showNotification:
		view = m.overlayPopup(view, m.viewNotification())
	case m.showStats:
		view = m.overlayPopup(view, m.viewStats())
	}

	return view
}

func (m *Model) viewHeader(width int) string {
	title := m.styles.title.Render("POMODORO")
	session := mutedStyle.Render(m.state.Mode.Label())
	header := title + "  " + session
	return truncate(header, width)
}

func (m *Model) viewTabs() string {
	tabs := make([]string, 0, len(timer.Modes))
	for _, mode := range timer.Modes {
		style := m.styles.tab
		if mode == m.state.Mode {
			style = m.styles.activeTab
		}
		tabs = append(tabs, style.Render(mode.Label()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) viewClock() string {
	clock := m.styles.clock.Render(formatClock(m.state.Remaining))
	status := "paused"
	if m.state.Running {
		status = "running"
	} else if m.state.Remaining == m.state.Total() {
		status = "ready"
	}
	return lipgloss.JoinVertical(lipgloss.Center, clock, mutedStyle.Render(status))
}

func (m *Model) viewDots() string {
	return renderDots(m.state.Dots(), m.styles.dotOn, mutedStyle) +
		mutedStyle.Render(fmt.Sprintf("  %d completed", m.state.SessionsCompleted))
}

func renderDots(filled int, on, off lipgloss.Style) string {
	dots := make([]string, timer.SessionsPerSet)
	for i := range dots {
		if i < filled {
			dots[i] = on.Render("●")
		} else {
			dots[i] = off.Render("○")
		}
	}
	return strings.Join(dots, " ")
}

func (m *Model) viewSettings(width int) string {
	d := m.state.Durations
	tone := cue.Lookup(m.state.Cue)

	durations := fmt.Sprintf("%s %s  %s %s  %s %s",
		m.styles.label.Render("focus"), m.styles.value.Render(fmt.Sprintf("%dm", d.Focus)),
		m.styles.label.Render("short"), m.styles.value.Render(fmt.Sprintf("%dm", d.ShortBreak)),
		m.styles.label.Render("long"), m.styles.value.Render(fmt.Sprintf("%dm", d.LongBreak)),
	)
	if m.state.Running {
		durations += mutedStyle.Render("  (locked while running)")
	}

	details := fmt.Sprintf("%s %s  %s %s  %s %s",
		m.styles.label.Render("task"), m.styles.value.Render(m.state.Task),
		m.styles.label.Render("sound"), m.styles.value.Render(tone.Name),
		m.styles.label.Render("theme"), m.styles.value.Render(themes[m.theme].Name),
	)

	return lipgloss.JoinVertical(lipgloss.Center,
		truncate(durations, width),
		truncate(details, width),
	)
}

func (m *Model) viewToday(width int) string {
	if m.today == nil {
		return ""
	}
	line := fmt.Sprintf("today: %d sessions, %s focused",
		m.today.FocusCycles, formatDuration(m.today.FocusTime()))
	return mutedStyle.Render(truncate(line, width))
}

func (m *Model) viewEditor() string {
	lo, hi := timer.Bounds(m.editTarget)
	title := m.styles.title.Render(fmt.Sprintf("%s minutes (%d-%d)", m.editTarget.Label(), lo, hi))

	input := m.editField.View()
	if m.editErr != nil {
		input = errorStyle.Render("✗ ") + input
	}

	help := mutedStyle.Render("[Enter] apply  [Tab] next mode  [Esc] cancel")
	return lipgloss.JoinVertical(lipgloss.Center, title, input, help)
}

func (m *Model) viewPermission() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		m.styles.title.Render("Desktop notifications"),
		"",
		"Show a notification when a session ends?",
		"",
		mutedStyle.Render("[y] Allow  [n] Deny  [Esc] Ask next time"),
	)
	return m.styles.popup.Render(content)
}

func (m *Model) viewNotification() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		m.styles.title.Render(m.noticeTitle),
		"",
		m.noticeBody,
		"",
		mutedStyle.Render("Press any key to dismiss"),
	)
	return m.styles.popup.Render(content)
}

func (m *Model) viewStats() string {
	lines := []string{m.styles.title.Render("TODAY")}

	if !m.statsLoaded {
		lines = append(lines, "", mutedStyle.Render("No history available"))
	} else {
		lines = append(lines, "",
			fmt.Sprintf("Focus sessions  %d", m.today.FocusCycles),
			fmt.Sprintf("Breaks          %d", m.today.BreakCycles),
			fmt.Sprintf("Focus time      %s", formatDuration(m.today.FocusTime())),
		)
		for _, t := range m.taskTotals {
			name := t.TaskType
			if name == "" {
				name = "-"
			}
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("  %-18s %d × %dm", truncate(name, 18), t.Cycles, t.Minutes)))
		}
		lines = append(lines, "", m.statsTable.View())
	}

	lines = append(lines, "",
		fmt.Sprintf("This run: %d sessions, task %s", m.state.SessionsCompleted, m.state.Task),
		"",
		mutedStyle.Render("Press any key to close"),
	)

	return m.styles.popup.Render(strings.Join(lines, "\n"))
}

func (m *Model) overlayPopup(background, popup string) string {
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		popup,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.AdaptiveColor{}),
	)
}

// Helper functions

// formatClock renders seconds as MM:SS. Minutes are not wrapped into hours.
func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func formatDuration(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}

func truncate(s string, maxLen int) string {
	if ansi.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return "…"
	}
	return ansi.Truncate(s, maxLen, "…")
}
