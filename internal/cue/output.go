package cue

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/jfreymuth/pulse"
)

// ErrAudioUnavailable is returned by output factories when no sound device
// can be opened.
var ErrAudioUnavailable = errors.New("audio output unavailable")

// OutputState mirrors whether an output can make sound right now
type OutputState int

const (
	OutputRunning OutputState = iota
	OutputSuspended
	OutputClosed
)

func (s OutputState) String() string {
	switch s {
	case OutputSuspended:
		return "suspended"
	case OutputClosed:
		return "closed"
	default:
		return "running"
	}
}

// Output renders tones on some audio device
type Output interface {
	State() OutputState
	Play(t Tone) error
	Close() error
}

// OutputFactory opens an Output. It is called lazily on first playback.
type OutputFactory func() (Output, error)

// Backend names accepted by NewOutputFactory
const (
	BackendPulse = "pulse"
	BackendBeep  = "beep"
	BackendNone  = "none"
)

// NewOutputFactory returns the factory for a configured backend name
func NewOutputFactory(backend string, sampleRate int) OutputFactory {
	switch backend {
	case BackendBeep:
		return func() (Output, error) { return &BeepOutput{}, nil }
	case BackendNone:
		return func() (Output, error) { return nil, ErrAudioUnavailable }
	default:
		return func() (Output, error) { return NewPulseOutput(sampleRate) }
	}
}

// PulseOutput plays synthesised tones through a PulseAudio server
type PulseOutput struct {
	mu         sync.Mutex
	client     *pulse.Client
	sampleRate int
}

// NewPulseOutput connects to the PulseAudio server
func NewPulseOutput(sampleRate int) (*PulseOutput, error) {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	c, err := pulse.NewClient(pulse.ClientApplicationName("pomodoro"))
	if err != nil {
		return nil, fmt.Errorf("%w: connect pulse: %v", ErrAudioUnavailable, err)
	}
	return &PulseOutput{client: c, sampleRate: sampleRate}, nil
}

// State reports suspended when the server has no default sink to play on
func (o *PulseOutput) State() OutputState {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.client == nil {
		return OutputClosed
	}
	if _, err := o.client.DefaultSink(); err != nil {
		return OutputSuspended
	}
	return OutputRunning
}

// Play renders t and blocks until the server has drained it
func (o *PulseOutput) Play(t Tone) error {
	o.mu.Lock()
	c := o.client
	o.mu.Unlock()
	if c == nil {
		return ErrAudioUnavailable
	}

	samples := t.Render(o.sampleRate)
	if len(samples) == 0 {
		return nil
	}

	pos := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if pos >= len(samples) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, samples[pos:])
		pos += n
		return n, nil
	})

	stream, err := c.NewPlayback(reader,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(o.sampleRate),
		pulse.PlaybackLatency(0.1),
	)
	if err != nil {
		return fmt.Errorf("open playback: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	stream.Stop()
	return nil
}

// Close disconnects from the server
func (o *PulseOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.client != nil {
		o.client.Close()
		o.client = nil
	}
	return nil
}

// BeepOutput approximates tones with the system beeper. It ignores wave
// shape and envelope but keeps the pulse rhythm.
type BeepOutput struct {
	closed bool
	mu     sync.Mutex
}

func (o *BeepOutput) State() OutputState {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return OutputClosed
	}
	return OutputRunning
}

func (o *BeepOutput) Play(t Tone) error {
	if t.Modifier == Pulse {
		for i := 0; i < pulseCount; i++ {
			if i > 0 {
				time.Sleep(pulseSpacing - pulseOn)
			}
			if err := beeep.Beep(t.Frequency, int(pulseOn.Milliseconds())); err != nil {
				return fmt.Errorf("beep: %w", err)
			}
		}
		return nil
	}
	if err := beeep.Beep(t.Frequency, int(t.Duration.Milliseconds())); err != nil {
		return fmt.Errorf("beep: %w", err)
	}
	return nil
}

func (o *BeepOutput) Close() error {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	return nil
}
