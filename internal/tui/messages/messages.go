package messages

import (
	"github.com/valentindosimont/pomodoro/internal/store"
	"github.com/valentindosimont/pomodoro/internal/timer"
)

// TimerEventMsg forwards an engine event to the TUI
type TimerEventMsg struct {
	Event timer.Event
}

// StatsMsg contains today's totals from the history store
type StatsMsg struct {
	Today  *store.DailyStats
	Tasks  []store.TaskTotal
	Recent []store.Cycle
	Err    error
}

// ErrorMsg contains an error message
type ErrorMsg struct {
	Err error
}
