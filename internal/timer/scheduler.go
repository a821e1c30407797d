package timer

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler owns a single recurring tick task. Starting an active scheduler
// is a no-op and Stop does not return until the task has exited.
type Scheduler struct {
	clock    clockwork.Clock
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a scheduler firing every interval on clock
func NewScheduler(clock clockwork.Clock, interval time.Duration) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Scheduler{
		clock:    clock,
		interval: interval,
	}
}

// Start launches the tick loop. fn is called for every tick and ends the
// loop by returning false. Returns false if a loop is already active.
func (s *Scheduler) Start(fn func(now time.Time) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeLocked() {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	ticker := s.clock.NewTicker(s.interval)

	s.cancel = cancel
	s.done = done

	go s.loop(ctx, ticker, fn, done)
	return true
}

// Stop cancels the tick loop and waits for it to exit
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Active reports whether a tick loop is currently running
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked()
}

func (s *Scheduler) activeLocked() bool {
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

func (s *Scheduler) loop(ctx context.Context, ticker clockwork.Ticker, fn func(time.Time) bool, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.Chan():
			if ctx.Err() != nil {
				return
			}
			if !fn(now) {
				return
			}
		}
	}
}
