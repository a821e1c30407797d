package store

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valentindosimont/pomodoro/internal/timer"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const dayFormat = "2006-01-02"

// History records completed cycles in SQLite
type History struct {
	db *sql.DB
}

// Cycle is one completed countdown
type Cycle struct {
	ID          int
	Mode        timer.Mode
	TaskType    string
	Minutes     int
	CompletedAt time.Time
}

// DailyStats aggregates the cycles completed on one day
type DailyStats struct {
	Date         string
	FocusCycles  int
	BreakCycles  int
	FocusSeconds int
}

// FocusTime is the total focus time of the day
func (d DailyStats) FocusTime() time.Duration {
	return time.Duration(d.FocusSeconds) * time.Second
}

// TaskTotal counts focus cycles per task type
type TaskTotal struct {
	TaskType string
	Cycles   int
	Minutes  int
}

// OpenHistory opens the history database at the given path
func OpenHistory(dbPath string) (*History, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	h := &History{db: db}

	if err := h.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return h, nil
}

// Close closes the database connection
func (h *History) Close() error {
	return h.db.Close()
}

func (h *History) migrate() error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	for _, entry := range entries {
		schema, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := h.db.Exec(string(schema)); err != nil {
			return fmt.Errorf("exec migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// RecordCycle stores a completed cycle and folds it into the daily totals
func (h *History) RecordCycle(c Cycle) error {
	if c.CompletedAt.IsZero() {
		c.CompletedAt = time.Now()
	}
	day := c.CompletedAt.Local().Format(dayFormat)

	focusCycles, breakCycles, focusSeconds := 0, 0, 0
	if c.Mode == timer.Focus {
		focusCycles = 1
		focusSeconds = c.Minutes * 60
	} else {
		breakCycles = 1
	}

	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("begin record cycle: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO cycles (mode, task_type, minutes, day, completed_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.Mode.String(), c.TaskType, c.Minutes, day, c.CompletedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO daily_stats (date, focus_cycles, break_cycles, focus_seconds)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			focus_cycles = focus_cycles + excluded.focus_cycles,
			break_cycles = break_cycles + excluded.break_cycles,
			focus_seconds = focus_seconds + excluded.focus_seconds,
			updated_at = CURRENT_TIMESTAMP
	`, day, focusCycles, breakCycles, focusSeconds)
	if err != nil {
		return fmt.Errorf("update daily stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record cycle: %w", err)
	}
	return nil
}

// StatsFor retrieves the totals of the day containing t
func (h *History) StatsFor(t time.Time) (*DailyStats, error) {
	date := t.Local().Format(dayFormat)

	var stats DailyStats
	err := h.db.QueryRow(`
		SELECT date, focus_cycles, break_cycles, focus_seconds
		FROM daily_stats WHERE date = ?
	`, date).Scan(
		&stats.Date,
		&stats.FocusCycles,
		&stats.BreakCycles,
		&stats.FocusSeconds,
	)

	if err == sql.ErrNoRows {
		return &DailyStats{Date: date}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get daily stats: %w", err)
	}

	return &stats, nil
}

// TaskTotals breaks the focus cycles of the day containing t down by task type
func (h *History) TaskTotals(t time.Time) ([]TaskTotal, error) {
	rows, err := h.db.Query(`
		SELECT task_type, COUNT(*), COALESCE(SUM(minutes), 0)
		FROM cycles
		WHERE day = ? AND mode = ?
		GROUP BY task_type
		ORDER BY COUNT(*) DESC, task_type
	`, t.Local().Format(dayFormat), timer.Focus.String())
	if err != nil {
		return nil, fmt.Errorf("get task totals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var totals []TaskTotal
	for rows.Next() {
		var total TaskTotal
		if err := rows.Scan(&total.TaskType, &total.Cycles, &total.Minutes); err != nil {
			return nil, fmt.Errorf("scan task total: %w", err)
		}
		totals = append(totals, total)
	}

	return totals, rows.Err()
}

// RecentCycles retrieves the most recently completed cycles
func (h *History) RecentCycles(limit int) ([]Cycle, error) {
	rows, err := h.db.Query(`
		SELECT id, mode, task_type, minutes, completed_at
		FROM cycles
		ORDER BY completed_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent cycles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cycles []Cycle
	for rows.Next() {
		var c Cycle
		var mode string
		if err := rows.Scan(&c.ID, &mode, &c.TaskType, &c.Minutes, &c.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		c.Mode, _ = timer.ParseMode(mode)
		cycles = append(cycles, c)
	}

	return cycles, rows.Err()
}
