package cue

import (
	"math"
	"time"
)

// Wave is the oscillator shape of a tone
type Wave int

const (
	Sine Wave = iota
	Triangle
	Square
	Sawtooth
)

func (w Wave) String() string {
	switch w {
	case Triangle:
		return "triangle"
	case Square:
		return "square"
	case Sawtooth:
		return "sawtooth"
	default:
		return "sine"
	}
}

// Modifier shapes the gain envelope of a tone
type Modifier int

const (
	Plain Modifier = iota
	Fade
	Pulse
	DoubleTone
)

func (m Modifier) String() string {
	switch m {
	case Fade:
		return "fade"
	case Pulse:
		return "pulse"
	case DoubleTone:
		return "double_tone"
	default:
		return "plain"
	}
}

const (
	pulseCount   = 3
	pulseSpacing = 300 * time.Millisecond
	pulseOn      = 100 * time.Millisecond

	// Exponential ramps cannot reach zero; this is where fade ends.
	fadeFloor = 0.001

	secondVoiceFreq = 1.5
	secondVoiceGain = 0.7
)

// Tone describes one completion sound
type Tone struct {
	ID        string
	Name      string
	Wave      Wave
	Frequency float64
	Gain      float64
	Duration  time.Duration
	Modifier  Modifier
}

// DefaultCue is played when an unknown cue id is requested
const DefaultCue = "bell"

var registry = map[string]Tone{
	"bell":  {ID: "bell", Name: "Bell", Wave: Sine, Frequency: 800, Gain: 0.3, Duration: time.Second, Modifier: Plain},
	"chime": {ID: "chime", Name: "Chime", Wave: Triangle, Frequency: 1000, Gain: 0.2, Duration: 1500 * time.Millisecond, Modifier: DoubleTone},
	"beep":  {ID: "beep", Name: "Beep", Wave: Square, Frequency: 440, Gain: 0.3, Duration: 500 * time.Millisecond, Modifier: Pulse},
	"soft":  {ID: "soft", Name: "Soft", Wave: Sine, Frequency: 300, Gain: 0.2, Duration: 2 * time.Second, Modifier: Fade},
	"ping":  {ID: "ping", Name: "Ping", Wave: Sine, Frequency: 1200, Gain: 0.3, Duration: 300 * time.Millisecond, Modifier: Plain},
}

var order = []string{"bell", "chime", "beep", "soft", "ping"}

// Lookup returns the tone registered under id, falling back to the bell
func Lookup(id string) Tone {
	if t, ok := registry[id]; ok {
		return t
	}
	return registry[DefaultCue]
}

// Known reports whether id names a registered tone
func Known(id string) bool {
	_, ok := registry[id]
	return ok
}

// IDs returns the registered cue ids in menu order
func IDs() []string {
	return append([]string(nil), order...)
}

// Next returns the cue after id in menu order, wrapping around
func Next(id string) string {
	ids := IDs()
	for i, candidate := range ids {
		if candidate == id {
			return ids[(i+1)%len(ids)]
		}
	}
	return ids[0]
}

// Length is how long the tone sounds, including all pulse bursts
func (t Tone) Length() time.Duration {
	if t.Modifier == Pulse {
		bursts := time.Duration(pulseCount-1)*pulseSpacing + pulseOn
		if bursts > t.Duration {
			return bursts
		}
	}
	return t.Duration
}

// Envelope returns the gain of the primary voice at offset at
func (t Tone) Envelope(at time.Duration) float64 {
	if at < 0 || at >= t.Length() {
		return 0
	}
	switch t.Modifier {
	case Fade:
		progress := float64(at) / float64(t.Duration)
		return t.Gain * math.Pow(fadeFloor/t.Gain, progress)
	case Pulse:
		for i := 0; i < pulseCount; i++ {
			start := time.Duration(i) * pulseSpacing
			if at >= start && at < start+pulseOn {
				return t.Gain
			}
		}
		return 0
	default:
		return t.Gain
	}
}

func oscillate(w Wave, freq, seconds float64) float64 {
	phase := freq * seconds
	switch w {
	case Square:
		if math.Sin(2*math.Pi*phase) >= 0 {
			return 1
		}
		return -1
	case Triangle:
		return 2 / math.Pi * math.Asin(math.Sin(2*math.Pi*phase))
	case Sawtooth:
		return 2 * (phase - math.Floor(phase+0.5))
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// Render synthesises the tone as mono 16-bit PCM
func (t Tone) Render(sampleRate int) []int16 {
	if sampleRate <= 0 {
		return nil
	}
	n := int(t.Length().Seconds() * float64(sampleRate))
	samples := make([]int16, n)
	for i := range samples {
		sec := float64(i) / float64(sampleRate)
		at := time.Duration(sec * float64(time.Second))
		gain := t.Envelope(at)

		v := oscillate(t.Wave, t.Frequency, sec) * gain
		if t.Modifier == DoubleTone {
			v += oscillate(t.Wave, t.Frequency*secondVoiceFreq, sec) * gain * secondVoiceGain
		}
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		samples[i] = int16(v * math.MaxInt16)
	}
	return samples
}
