package timer

import (
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// EngineConfig configures an Engine
type EngineConfig struct {
	Durations    Durations
	Cue          string
	TickInterval time.Duration
	Clock        clockwork.Clock
	Logger       zerolog.Logger
}

// DefaultEngineConfig returns the configuration used when nothing is persisted
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Durations:    DefaultDurations(),
		Cue:          "bell",
		TickInterval: time.Second,
		Logger:       zerolog.Nop(),
	}
}

// Engine owns the timer state and its tick schedule. User operations are
// serialised; the tick loop is the only other writer.
type Engine struct {
	opMu sync.Mutex

	mu       sync.Mutex
	state    State
	gen      uint64
	lastTick time.Time

	clock     clockwork.Clock
	scheduler *Scheduler
	log       zerolog.Logger

	hmu      sync.RWMutex
	handlers []func(Event)
}

// NewEngine creates a stopped engine in focus mode
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if err := cfg.Durations.Validate(); err != nil {
		cfg.Logger.Warn().Err(err).Msg("falling back to default durations")
		cfg.Durations = DefaultDurations()
	}

	return &Engine{
		state:     NewState(cfg.Durations).SelectCue(cfg.Cue),
		clock:     cfg.Clock,
		scheduler: NewScheduler(cfg.Clock, cfg.TickInterval),
		log:       cfg.Logger.With().Str("component", "timer").Logger(),
	}
}

// OnEvent registers a handler for emitted events. Handlers run on the
// goroutine that caused the event and must not block.
func (e *Engine) OnEvent(fn func(Event)) {
	e.hmu.Lock()
	defer e.hmu.Unlock()
	e.handlers = append(e.handlers, fn)
}

// Snapshot returns a copy of the current state
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Start begins the countdown. Calling it while running does nothing.
func (e *Engine) Start() {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	prev := e.state
	e.state = e.state.Start()
	started := !prev.Running && e.state.Running
	var gen uint64
	if started {
		e.gen++
		gen = e.gen
		e.lastTick = e.clock.Now()
	}
	e.mu.Unlock()

	if !started {
		return
	}

	// A loop that ended on completion may still be unwinding
	e.scheduler.Stop()
	e.scheduler.Start(e.tickFunc(gen))

	e.log.Debug().Str("mode", prev.Mode.String()).Int("remaining", prev.Remaining).Msg("started")
	e.dispatch([]Event{{Type: EventStateChanged}})
}

// Pause halts the countdown
func (e *Engine) Pause() {
	_ = e.apply(func(s State) (State, []Event, error) {
		return s.Pause(), nil, nil
	})
}

// Toggle pauses a running countdown or starts a stopped one
func (e *Engine) Toggle() {
	if e.Snapshot().Running {
		e.Pause()
		return
	}
	e.Start()
}

// Reset stops the countdown and restores the full duration
func (e *Engine) Reset() {
	_ = e.apply(func(s State) (State, []Event, error) {
		return s.Reset(), nil, nil
	})
}

// SwitchMode stops the countdown and moves to target at full duration
func (e *Engine) SwitchMode(target Mode) {
	_ = e.apply(func(s State) (State, []Event, error) {
		return s.SwitchMode(target), nil, nil
	})
}

// SetDuration changes the length of mode, rejecting out-of-range values
func (e *Engine) SetDuration(m Mode, minutes int) error {
	err := e.apply(func(s State) (State, []Event, error) {
		return s.SetDuration(m, minutes)
	})
	if err != nil {
		e.log.Debug().Err(err).Msg("duration rejected")
	}
	return err
}

// SetDurationText parses raw and applies it as the length of mode
func (e *Engine) SetDurationText(m Mode, raw string) error {
	err := e.apply(func(s State) (State, []Event, error) {
		return s.SetDurationText(m, raw)
	})
	if err != nil {
		e.log.Debug().Err(err).Msg("duration rejected")
	}
	return err
}

// SelectCue changes the completion cue without touching the countdown
func (e *Engine) SelectCue(id string) {
	e.mu.Lock()
	e.state = e.state.SelectCue(id)
	e.mu.Unlock()
	e.dispatch([]Event{{Type: EventStateChanged}})
}

// SelectTask changes the task label without touching the countdown
func (e *Engine) SelectTask(task string) {
	e.mu.Lock()
	e.state = e.state.SelectTask(task)
	e.mu.Unlock()
	e.dispatch([]Event{{Type: EventStateChanged}})
}

// Close stops the tick loop
func (e *Engine) Close() {
	e.Pause()
	e.scheduler.Stop()
}

// apply runs a transition that never starts the countdown and cancels the
// tick loop before returning whenever the result is stopped.
func (e *Engine) apply(fn func(State) (State, []Event, error)) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	next, events, err := fn(e.state)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.state = next
	if !next.Running {
		e.gen++
	}
	e.mu.Unlock()

	if !next.Running {
		e.scheduler.Stop()
	}

	e.dispatch(append(events, Event{Type: EventStateChanged}))
	return nil
}

func (e *Engine) tickFunc(gen uint64) func(time.Time) bool {
	return func(time.Time) bool {
		// Ticks that pile up are merged and carry the first expiry, so
		// elapsed time is measured on the clock itself.
		now := e.clock.Now()
		e.mu.Lock()
		if gen != e.gen || !e.state.Running {
			e.mu.Unlock()
			return false
		}
		events, applied := e.advanceLocked(now)
		running := e.state.Running
		e.mu.Unlock()

		if applied > 0 {
			events = append(events, Event{Type: EventTicked})
		}
		e.dispatch(events)
		return running
	}
}

// advanceLocked applies one Tick per whole second elapsed since the last
// applied second. More than one means the host delayed us and the missing
// seconds are caught up here.
func (e *Engine) advanceLocked(now time.Time) ([]Event, int) {
	steps := int(now.Sub(e.lastTick) / time.Second)
	if steps <= 0 {
		return nil, 0
	}
	if steps > 1 {
		e.log.Debug().Int("seconds", steps).Msg("catching up delayed ticks")
	}
	e.lastTick = e.lastTick.Add(time.Duration(steps) * time.Second)

	var events []Event
	applied := 0
	for i := 0; i < steps && e.state.Running; i++ {
		var evs []Event
		e.state, evs = e.state.Tick()
		events = append(events, evs...)
		applied++
	}

	for _, ev := range events {
		if ev.Type == EventCycleCompleted {
			e.log.Info().
				Str("finished", ev.FinishedMode.String()).
				Str("next", ev.NextMode.String()).
				Int("sessions", ev.SessionsCompleted).
				Msg("cycle completed")
		}
	}
	return events, applied
}

func (e *Engine) dispatch(events []Event) {
	if len(events) == 0 {
		return
	}
	e.hmu.RLock()
	handlers := slices.Clone(e.handlers)
	e.hmu.RUnlock()

	now := e.clock.Now()
	for _, ev := range events {
		if ev.At.IsZero() {
			ev.At = now
		}
		for _, h := range handlers {
			h(ev)
		}
	}
}
