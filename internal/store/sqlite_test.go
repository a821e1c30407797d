package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/valentindosimont/pomodoro/internal/timer"
)

func newTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenHistory() error = %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestStatsForEmptyDay(t *testing.T) {
	h := newTestHistory(t)
	day := time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local)

	stats, err := h.StatsFor(day)
	if err != nil {
		t.Fatalf("StatsFor() error = %v", err)
	}
	if stats.Date != "2026-03-14" || stats.FocusCycles != 0 || stats.BreakCycles != 0 {
		t.Errorf("StatsFor() = %+v, want empty 2026-03-14", stats)
	}
}

func TestRecordCycleAggregates(t *testing.T) {
	h := newTestHistory(t)
	day := time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)

	cycles := []Cycle{
		{Mode: timer.Focus, TaskType: "Deep Work", Minutes: 25, CompletedAt: day},
		{Mode: timer.ShortBreak, Minutes: 5, CompletedAt: day.Add(30 * time.Minute)},
		{Mode: timer.Focus, TaskType: "Deep Work", Minutes: 50, CompletedAt: day.Add(time.Hour)},
		{Mode: timer.Focus, TaskType: "Client Calls", Minutes: 25, CompletedAt: day.Add(2 * time.Hour)},
		{Mode: timer.Focus, TaskType: "Deep Work", Minutes: 25, CompletedAt: day.Add(24 * time.Hour)},
	}
	for _, c := range cycles {
		if err := h.RecordCycle(c); err != nil {
			t.Fatalf("RecordCycle() error = %v", err)
		}
	}

	stats, err := h.StatsFor(day)
	if err != nil {
		t.Fatalf("StatsFor() error = %v", err)
	}
	if stats.FocusCycles != 3 {
		t.Errorf("FocusCycles = %d, want 3", stats.FocusCycles)
	}
	if stats.BreakCycles != 1 {
		t.Errorf("BreakCycles = %d, want 1", stats.BreakCycles)
	}
	if stats.FocusTime() != 100*time.Minute {
		t.Errorf("FocusTime() = %v, want 100m", stats.FocusTime())
	}

	totals, err := h.TaskTotals(day)
	if err != nil {
		t.Fatalf("TaskTotals() error = %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("TaskTotals() = %+v, want 2 task types", totals)
	}
	if totals[0].TaskType != "Deep Work" || totals[0].Cycles != 2 || totals[0].Minutes != 75 {
		t.Errorf("totals[0] = %+v, want Deep Work 2 cycles 75 minutes", totals[0])
	}
	if totals[1].TaskType != "Client Calls" || totals[1].Cycles != 1 {
		t.Errorf("totals[1] = %+v, want Client Calls 1 cycle", totals[1])
	}
}

func TestRecentCycles(t *testing.T) {
	h := newTestHistory(t)
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	for i, m := range []timer.Mode{timer.Focus, timer.ShortBreak, timer.Focus, timer.LongBreak} {
		c := Cycle{Mode: m, Minutes: 5, CompletedAt: start.Add(time.Duration(i) * time.Hour)}
		if err := h.RecordCycle(c); err != nil {
			t.Fatalf("RecordCycle() error = %v", err)
		}
	}

	recent, err := h.RecentCycles(3)
	if err != nil {
		t.Fatalf("RecentCycles() error = %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("len(RecentCycles()) = %d, want 3", len(recent))
	}
	want := []timer.Mode{timer.LongBreak, timer.Focus, timer.ShortBreak}
	for i, c := range recent {
		if c.Mode != want[i] {
			t.Errorf("recent[%d].Mode = %s, want %s", i, c.Mode, want[i])
		}
	}
	if !recent[0].CompletedAt.Equal(start.Add(3 * time.Hour)) {
		t.Errorf("recent[0].CompletedAt = %v, want %v", recent[0].CompletedAt, start.Add(3*time.Hour))
	}
}

func TestOpenHistoryTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	h, err := OpenHistory(path)
	if err != nil {
		t.Fatalf("OpenHistory() error = %v", err)
	}
	_ = h.RecordCycle(Cycle{Mode: timer.Focus, Minutes: 25, CompletedAt: time.Now()})
	_ = h.Close()

	h, err = OpenHistory(path)
	if err != nil {
		t.Fatalf("OpenHistory() reopen error = %v", err)
	}
	defer func() { _ = h.Close() }()

	stats, err := h.StatsFor(time.Now())
	if err != nil {
		t.Fatalf("StatsFor() error = %v", err)
	}
	if stats.FocusCycles != 1 {
		t.Errorf("FocusCycles = %d after reopen, want 1", stats.FocusCycles)
	}
}
