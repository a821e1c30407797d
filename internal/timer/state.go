package timer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Mode is the kind of countdown currently displayed
type Mode int

const (
	Focus Mode = iota
	ShortBreak
	LongBreak
)

// Modes lists every mode in display order
var Modes = []Mode{Focus, ShortBreak, LongBreak}

func (m Mode) String() string {
	switch m {
	case ShortBreak:
		return "short_break"
	case LongBreak:
		return "long_break"
	default:
		return "focus"
	}
}

// Label returns the human readable name of the mode
func (m Mode) Label() string {
	switch m {
	case ShortBreak:
		return "Short Break"
	case LongBreak:
		return "Long Break"
	default:
		return "Focus Time"
	}
}

// IsBreak reports whether the mode is one of the two break modes
func (m Mode) IsBreak() bool {
	return m == ShortBreak || m == LongBreak
}

// ParseMode converts a mode name back into a Mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "focus", "work":
		return Focus, nil
	case "short_break", "shortbreak", "short":
		return ShortBreak, nil
	case "long_break", "longbreak", "long":
		return LongBreak, nil
	}
	return Focus, fmt.Errorf("unknown mode %q", s)
}

// SessionsPerSet is the number of focus cycles between long breaks
const SessionsPerSet = 4

// ErrInvalidDuration is returned when a duration setting is missing,
// non-numeric or outside the bounds of its mode.
var ErrInvalidDuration = errors.New("invalid duration")

type bounds struct {
	min, max int
}

var modeBounds = map[Mode]bounds{
	Focus:      {1, 120},
	ShortBreak: {1, 30},
	LongBreak:  {5, 60},
}

// Bounds returns the inclusive minute range accepted for a mode
func Bounds(m Mode) (min, max int) {
	b := modeBounds[m]
	return b.min, b.max
}

// ValidateDuration checks minutes against the bounds of mode
func ValidateDuration(m Mode, minutes int) error {
	lo, hi := Bounds(m)
	if minutes < lo || minutes > hi {
		return fmt.Errorf("%w: %s must be between %d and %d minutes, got %d", ErrInvalidDuration, m, lo, hi, minutes)
	}
	return nil
}

// ParseDuration parses user supplied text into a minute count valid for mode
func ParseDuration(m Mode, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s duration is missing", ErrInvalidDuration, m)
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s duration %q is not a whole number", ErrInvalidDuration, m, raw)
	}
	if err := ValidateDuration(m, minutes); err != nil {
		return 0, err
	}
	return minutes, nil
}

// Durations holds the configured length of each mode in minutes
type Durations struct {
	Focus      int
	ShortBreak int
	LongBreak  int
}

// DefaultDurations returns the classic 25/5/15 split
func DefaultDurations() Durations {
	return Durations{Focus: 25, ShortBreak: 5, LongBreak: 15}
}

// Get returns the minutes configured for mode
func (d Durations) Get(m Mode) int {
	switch m {
	case ShortBreak:
		return d.ShortBreak
	case LongBreak:
		return d.LongBreak
	default:
		return d.Focus
	}
}

// With returns a copy of d with mode set to minutes
func (d Durations) With(m Mode, minutes int) Durations {
	switch m {
	case ShortBreak:
		d.ShortBreak = minutes
	case LongBreak:
		d.LongBreak = minutes
	default:
		d.Focus = minutes
	}
	return d
}

// Seconds returns the full countdown length of mode
func (d Durations) Seconds(m Mode) int {
	return d.Get(m) * 60
}

// Validate reports the first mode whose duration is out of bounds
func (d Durations) Validate() error {
	for _, m := range Modes {
		if err := ValidateDuration(m, d.Get(m)); err != nil {
			return err
		}
	}
	return nil
}

// EventType identifies what a transition emitted
type EventType int

const (
	EventCycleCompleted EventType = iota
	EventDurationChanged
	EventStateChanged
	EventTicked
)

func (t EventType) String() string {
	switch t {
	case EventCycleCompleted:
		return "cycle_completed"
	case EventDurationChanged:
		return "duration_changed"
	case EventTicked:
		return "ticked"
	default:
		return "state_changed"
	}
}

// Event is emitted by a transition for the caller to act upon
type Event struct {
	Type EventType

	// Set for EventCycleCompleted
	FinishedMode      Mode
	NextMode          Mode
	SessionsCompleted int
	Cue               string
	Task              string

	// Set for EventDurationChanged. Completions carry the length of the
	// finished cycle in Minutes.
	Mode    Mode
	Minutes int

	At time.Time
}

// State is the complete timer record. Transitions are value methods that
// return the next state, leaving the receiver untouched.
type State struct {
	Mode              Mode
	Remaining         int
	Running           bool
	SessionsCompleted int
	Durations         Durations
	Cue               string
	Task              string
}

// NewState returns a stopped focus cycle at full length
func NewState(d Durations) State {
	return State{
		Mode:      Focus,
		Remaining: d.Seconds(Focus),
		Durations: d,
	}
}

// Start begins the countdown when there is time left
func (s State) Start() State {
	if s.Running || s.Remaining <= 0 {
		return s
	}
	s.Running = true
	return s
}

// Pause halts the countdown
func (s State) Pause() State {
	s.Running = false
	return s
}

// Toggle starts a stopped countdown or pauses a running one
func (s State) Toggle() State {
	if s.Running {
		return s.Pause()
	}
	return s.Start()
}

// Reset stops the countdown and restores the full duration of the current mode
func (s State) Reset() State {
	s.Running = false
	s.Remaining = s.Durations.Seconds(s.Mode)
	return s
}

// SwitchMode moves to target without carrying over partial progress
func (s State) SwitchMode(target Mode) State {
	s.Mode = target
	return s.Reset()
}

// SelectCue records the cue to play on completion
func (s State) SelectCue(id string) State {
	s.Cue = id
	return s
}

// SelectTask labels the focus cycles that follow
func (s State) SelectTask(task string) State {
	s.Task = task
	return s
}

// SetDuration changes the length of mode. A change to the displayed mode
// behaves like Reset. Out-of-range input leaves the state untouched.
func (s State) SetDuration(m Mode, minutes int) (State, []Event, error) {
	if err := ValidateDuration(m, minutes); err != nil {
		return s, nil, err
	}
	s.Durations = s.Durations.With(m, minutes)
	if m == s.Mode {
		s = s.Reset()
	}
	return s, []Event{{Type: EventDurationChanged, Mode: m, Minutes: minutes}}, nil
}

// SetDurationText is SetDuration for raw user input
func (s State) SetDurationText(m Mode, raw string) (State, []Event, error) {
	minutes, err := ParseDuration(m, raw)
	if err != nil {
		return s, nil, err
	}
	return s.SetDuration(m, minutes)
}

// Tick advances a running countdown by one second. Reaching zero completes
// the cycle and moves to the next mode without starting it.
func (s State) Tick() (State, []Event) {
	if !s.Running {
		return s, nil
	}
	if s.Remaining > 0 {
		s.Remaining--
	}
	if s.Remaining > 0 {
		return s, nil
	}
	return s.complete()
}

func (s State) complete() (State, []Event) {
	s.Running = false
	finished := s.Mode

	if finished == Focus {
		s.SessionsCompleted++
		if s.SessionsCompleted%SessionsPerSet == 0 {
			s.Mode = LongBreak
		} else {
			s.Mode = ShortBreak
		}
	} else {
		s.Mode = Focus
	}
	s.Remaining = s.Durations.Seconds(s.Mode)

	return s, []Event{{
		Type:              EventCycleCompleted,
		FinishedMode:      finished,
		NextMode:          s.Mode,
		SessionsCompleted: s.SessionsCompleted,
		Cue:               s.Cue,
		Task:              s.Task,
		Minutes:           s.Durations.Get(finished),
	}}
}

// Total returns the full length of the current cycle in seconds
func (s State) Total() int {
	return s.Durations.Seconds(s.Mode)
}

// Progress returns the elapsed fraction of the current cycle
func (s State) Progress() float64 {
	total := s.Total()
	if total <= 0 {
		return 0
	}
	p := float64(total-s.Remaining) / float64(total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Dots returns how many focus cycles of the current set are done
func (s State) Dots() int {
	return s.SessionsCompleted % SessionsPerSet
}

// RemainingDuration returns Remaining as a time.Duration
func (s State) RemainingDuration() time.Duration {
	return time.Duration(s.Remaining) * time.Second
}
