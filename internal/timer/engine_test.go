package timer

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

const testEventTimeout = 2 * time.Second

func newTestEngine(t *testing.T, d Durations) (*Engine, *clockwork.FakeClock, chan Event) {
	t.Helper()

	clock := clockwork.NewFakeClock()
	cfg := DefaultEngineConfig()
	cfg.Durations = d
	cfg.Clock = clock

	e := NewEngine(cfg)
	events := make(chan Event, 1024)
	e.OnEvent(func(ev Event) {
		events <- ev
	})
	t.Cleanup(e.Close)
	return e, clock, events
}

func waitFor(t *testing.T, events chan Event, typ EventType) Event {
	t.Helper()
	deadline := time.After(testEventTimeout)
	for {
		select {
		case ev := <-events:
			if ev.Type == typ {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %v", typ)
			return Event{}
		}
	}
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(testEventTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func TestEngineStartTicks(t *testing.T) {
	e, clock, events := newTestEngine(t, DefaultDurations())

	e.Start()
	if !e.Snapshot().Running {
		t.Fatal("Start() should set Running")
	}

	clock.Advance(time.Second)
	waitFor(t, events, EventTicked)

	if got := e.Snapshot().Remaining; got != 25*60-1 {
		t.Errorf("Remaining = %d, want %d", got, 25*60-1)
	}
}

func TestEngineStartIsIdempotent(t *testing.T) {
	e, clock, events := newTestEngine(t, DefaultDurations())

	e.Start()
	e.Start()
	e.Start()

	clock.Advance(time.Second)
	waitFor(t, events, EventTicked)

	// A stacked second loop would tick twice per second
	time.Sleep(20 * time.Millisecond)
	if got := e.Snapshot().Remaining; got != 25*60-1 {
		t.Errorf("Remaining = %d, want %d", got, 25*60-1)
	}
}

func TestEnginePauseCancelsTicks(t *testing.T) {
	e, clock, events := newTestEngine(t, DefaultDurations())

	e.Start()
	clock.Advance(time.Second)
	waitFor(t, events, EventTicked)

	e.Pause()
	e.Pause()
	if e.scheduler.Active() {
		t.Error("scheduler still active after Pause()")
	}
	before := e.Snapshot()

	clock.Advance(5 * time.Second)
	time.Sleep(20 * time.Millisecond)

	after := e.Snapshot()
	if after != before {
		t.Errorf("state changed while paused: %+v -> %+v", before, after)
	}
}

func TestEngineToggle(t *testing.T) {
	e, _, _ := newTestEngine(t, DefaultDurations())

	e.Toggle()
	if !e.Snapshot().Running {
		t.Error("Toggle() should start")
	}
	e.Toggle()
	if e.Snapshot().Running {
		t.Error("Toggle() should pause")
	}
}

func TestEngineCompletion(t *testing.T) {
	e, clock, events := newTestEngine(t, Durations{Focus: 1, ShortBreak: 1, LongBreak: 5})

	e.Start()
	for i := 0; i < 60; i++ {
		clock.Advance(time.Second)
		waitFor(t, events, EventTicked)
	}

	s := e.Snapshot()
	if s.Running {
		t.Error("Running = true after completion")
	}
	if s.Mode != ShortBreak || s.SessionsCompleted != 1 {
		t.Errorf("Mode = %v, SessionsCompleted = %d, want ShortBreak, 1", s.Mode, s.SessionsCompleted)
	}
	if !eventually(func() bool { return !e.scheduler.Active() }) {
		t.Error("scheduler should stop itself after completion")
	}

	e.Start()
	if !e.Snapshot().Running {
		t.Error("Start() after completion should run the next cycle")
	}
}

func TestEngineCompletionEventEmittedOnce(t *testing.T) {
	e, clock, events := newTestEngine(t, Durations{Focus: 1, ShortBreak: 1, LongBreak: 5})

	e.Start()
	count := 0
	for i := 0; i < 60; i++ {
		clock.Advance(time.Second)
		for {
			ev := <-events
			if ev.Type == EventCycleCompleted {
				count++
				if ev.FinishedMode != Focus {
					t.Errorf("FinishedMode = %v, want Focus", ev.FinishedMode)
				}
			}
			if ev.Type == EventTicked {
				break
			}
		}
	}
	if count != 1 {
		t.Errorf("CycleCompleted events = %d, want 1", count)
	}
}

func TestEngineCatchesUpDelayedTicks(t *testing.T) {
	e, _, _ := newTestEngine(t, Durations{Focus: 1, ShortBreak: 1, LongBreak: 5})

	e.Start()
	e.mu.Lock()
	base := e.lastTick
	events, applied := e.advanceLocked(base.Add(5*time.Second + 400*time.Millisecond))
	remaining := e.state.Remaining
	e.mu.Unlock()

	if applied != 5 {
		t.Errorf("applied = %d, want 5", applied)
	}
	if remaining != 55 {
		t.Errorf("Remaining = %d, want 55", remaining)
	}
	if len(events) != 0 {
		t.Errorf("events = %d, want 0", len(events))
	}

	// A gap longer than the cycle completes it exactly once and stops at zero
	e.mu.Lock()
	events, _ = e.advanceLocked(base.Add(10 * time.Minute))
	s := e.state
	e.mu.Unlock()

	if len(events) != 1 || events[0].Type != EventCycleCompleted {
		t.Errorf("events = %+v, want one CycleCompleted", events)
	}
	if s.Running || s.Remaining != 60 || s.Mode != ShortBreak {
		t.Errorf("state = %+v, want stopped ShortBreak at 60", s)
	}
}

func TestEngineSingleLongAdvanceCatchesUp(t *testing.T) {
	e, clock, events := newTestEngine(t, Durations{Focus: 1, ShortBreak: 1, LongBreak: 5})

	e.Start()
	clock.Advance(5 * time.Second)
	waitFor(t, events, EventTicked)

	if got := e.Snapshot().Remaining; got != 55 {
		t.Errorf("Remaining = %d, want 55", got)
	}

	clock.Advance(time.Minute)
	ev := waitFor(t, events, EventCycleCompleted)
	if ev.FinishedMode != Focus || ev.NextMode != ShortBreak {
		t.Errorf("completion = %v -> %v, want focus -> short_break", ev.FinishedMode, ev.NextMode)
	}

	s := e.Snapshot()
	if s.Running || s.Mode != ShortBreak || s.Remaining != 60 {
		t.Errorf("state = %+v, want stopped ShortBreak at 60", s)
	}
}

func TestEngineSetDuration(t *testing.T) {
	e, _, events := newTestEngine(t, DefaultDurations())

	if err := e.SetDuration(Focus, 0); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("SetDuration(Focus, 0) error = %v, want ErrInvalidDuration", err)
	}
	if err := e.SetDuration(Focus, 121); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("SetDuration(Focus, 121) error = %v, want ErrInvalidDuration", err)
	}
	if got := e.Snapshot().Durations.Focus; got != 25 {
		t.Errorf("Focus duration = %d after rejected writes, want 25", got)
	}

	e.Start()
	if err := e.SetDuration(Focus, 60); err != nil {
		t.Fatalf("SetDuration(Focus, 60) error = %v", err)
	}
	s := e.Snapshot()
	if s.Remaining != 3600 || s.Running {
		t.Errorf("Remaining = %d Running = %v, want 3600 false", s.Remaining, s.Running)
	}
	if e.scheduler.Active() {
		t.Error("scheduler still active after SetDuration on current mode")
	}

	ev := waitFor(t, events, EventDurationChanged)
	if ev.Mode != Focus || ev.Minutes != 60 {
		t.Errorf("DurationChanged = %+v, want Focus 60", ev)
	}
}

func TestEngineSetDurationText(t *testing.T) {
	e, _, _ := newTestEngine(t, DefaultDurations())

	if err := e.SetDurationText(LongBreak, "twenty"); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("SetDurationText(\"twenty\") error = %v, want ErrInvalidDuration", err)
	}
	if err := e.SetDurationText(LongBreak, "20"); err != nil {
		t.Errorf("SetDurationText(\"20\") error = %v", err)
	}
	if got := e.Snapshot().Durations.LongBreak; got != 20 {
		t.Errorf("LongBreak = %d, want 20", got)
	}
}

func TestEngineSwitchModeStopsTicks(t *testing.T) {
	e, clock, events := newTestEngine(t, DefaultDurations())

	e.Start()
	clock.Advance(time.Second)
	waitFor(t, events, EventTicked)

	e.SwitchMode(LongBreak)
	s := e.Snapshot()
	if s.Mode != LongBreak || s.Running || s.Remaining != 15*60 {
		t.Errorf("state = %+v, want stopped LongBreak at %d", s, 15*60)
	}
	if e.scheduler.Active() {
		t.Error("scheduler still active after SwitchMode()")
	}
}

func TestEngineInvalidConfigFallsBack(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Durations = Durations{Focus: 500, ShortBreak: 5, LongBreak: 15}
	cfg.Clock = clockwork.NewFakeClock()

	e := NewEngine(cfg)
	defer e.Close()

	if got := e.Snapshot().Durations; got != DefaultDurations() {
		t.Errorf("Durations = %+v, want defaults", got)
	}
}
