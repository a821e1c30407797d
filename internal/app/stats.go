package app

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/valentindosimont/pomodoro/internal/store"
)

var (
	reportTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8B5CF6"))
	reportHeadStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	reportCellStyle  = lipgloss.NewStyle().Padding(0, 1)
)

// PrintStats writes the totals of the day containing now to w
func PrintStats(cfg Config, now time.Time, w io.Writer) error {
	h, err := store.OpenHistory(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	stats, err := h.StatsFor(now)
	if err != nil {
		return err
	}
	tasks, err := h.TaskTotals(now)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(w, reportTitleStyle.Render("Pomodoro "+stats.Date))
	_, _ = fmt.Fprintf(w, "Focus sessions: %d\n", stats.FocusCycles)
	_, _ = fmt.Fprintf(w, "Breaks taken:   %d\n", stats.BreakCycles)
	_, _ = fmt.Fprintf(w, "Focus time:     %s\n", formatFocusTime(stats.FocusTime()))

	if len(tasks) == 0 {
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Task", "Sessions", "Minutes").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return reportHeadStyle
			}
			return reportCellStyle
		})
	for _, task := range tasks {
		name := task.TaskType
		if name == "" {
			name = "(none)"
		}
		t.Row(name, strconv.Itoa(task.Cycles), strconv.Itoa(task.Minutes))
	}
	_, _ = fmt.Fprintln(w, t.Render())
	return nil
}

func formatFocusTime(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}
