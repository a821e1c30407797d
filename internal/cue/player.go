package cue

import (
	"sync"

	"github.com/rs/zerolog"
)

// PlayerConfig configures a Player
type PlayerConfig struct {
	Output      OutputFactory
	Notifier    Notifier
	Permissions *Permissions
	Logger      zerolog.Logger
}

// Player turns completion events into a tone and a desktop notification.
// Every failure degrades to a silent skip.
type Player struct {
	mu      sync.Mutex
	factory OutputFactory
	out     Output

	notifier Notifier
	perms    *Permissions
	log      zerolog.Logger

	wg sync.WaitGroup
}

// NewPlayer creates a player. The audio output is not opened until needed.
func NewPlayer(cfg PlayerConfig) *Player {
	return &Player{
		factory:  cfg.Output,
		notifier: cfg.Notifier,
		perms:    cfg.Permissions,
		log:      cfg.Logger.With().Str("component", "cue").Logger(),
	}
}

// Play sounds the cue and, if permitted, shows the completion notification.
// It never blocks on the device.
func (p *Player) Play(id string, ctx Context) {
	p.sound(Lookup(id))
	p.notify(ctx)
}

// Preview sounds the cue without a notification
func (p *Player) Preview(id string) {
	p.sound(Lookup(id))
}

// sound opens the output and checks its state off the caller's goroutine.
// Both may be server round trips.
func (p *Player) sound(t Tone) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		out := p.output()
		if out == nil {
			return
		}
		if state := out.State(); state != OutputRunning {
			p.log.Debug().Str("state", state.String()).Msg("audio output not running, skipping cue")
			return
		}
		if err := out.Play(t); err != nil {
			p.log.Debug().Err(err).Str("cue", t.ID).Msg("cue playback failed")
		}
	}()
}

func (p *Player) notify(ctx Context) {
	if p.notifier == nil || p.perms == nil {
		return
	}
	if p.perms.Permission() != PermissionGranted {
		return
	}

	title, body := Message(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.notifier.Notify(title, body); err != nil {
			p.log.Debug().Err(err).Msg("notification failed")
		}
	}()
}

// Notifies reports whether completions can produce a desktop notification
// at all, regardless of permission.
func (p *Player) Notifies() bool {
	return p.notifier != nil
}

// output opens the audio output on first use and reuses it afterwards.
// A failed open is retried on the next cue.
func (p *Player) output() Output {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.out != nil {
		return p.out
	}
	if p.factory == nil {
		return nil
	}
	out, err := p.factory()
	if err != nil || out == nil {
		p.log.Debug().Err(err).Msg("audio output unavailable")
		return nil
	}
	p.out = out
	return out
}

// Wait blocks until in-flight cues and notifications have finished
func (p *Player) Wait() {
	p.wg.Wait()
}

// Close waits for pending cues and releases the audio output
func (p *Player) Close() error {
	p.Wait()

	p.mu.Lock()
	out := p.out
	p.out = nil
	p.mu.Unlock()

	if out == nil {
		return nil
	}
	return out.Close()
}
