package cue

import (
	"math"
	"testing"
	"time"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		id       string
		wave     Wave
		freq     float64
		modifier Modifier
	}{
		{"bell", Sine, 800, Plain},
		{"chime", Triangle, 1000, DoubleTone},
		{"beep", Square, 440, Pulse},
		{"soft", Sine, 300, Fade},
		{"ping", Sine, 1200, Plain},
	}

	for _, tt := range tests {
		tone := Lookup(tt.id)
		if tone.ID != tt.id || tone.Wave != tt.wave || tone.Frequency != tt.freq || tone.Modifier != tt.modifier {
			t.Errorf("Lookup(%q) = %+v", tt.id, tone)
		}
		if tone.Gain <= 0 || tone.Gain > 1 {
			t.Errorf("Lookup(%q).Gain = %v, want (0, 1]", tt.id, tone.Gain)
		}
	}

	if got := Lookup("kazoo"); got.ID != DefaultCue {
		t.Errorf("Lookup(unknown).ID = %q, want %q", got.ID, DefaultCue)
	}
}

func TestNextWraps(t *testing.T) {
	ids := IDs()
	id := ids[0]
	for i := 0; i < len(ids); i++ {
		id = Next(id)
	}
	if id != ids[0] {
		t.Errorf("Next() cycled to %q, want %q", id, ids[0])
	}
	if got := Next("kazoo"); got != ids[0] {
		t.Errorf("Next(unknown) = %q, want %q", got, ids[0])
	}
}

func TestEnvelopePlain(t *testing.T) {
	tone := Lookup("bell")

	for _, at := range []time.Duration{0, 500 * time.Millisecond, 999 * time.Millisecond} {
		if got := tone.Envelope(at); got != tone.Gain {
			t.Errorf("Envelope(%v) = %v, want %v", at, got, tone.Gain)
		}
	}
	if got := tone.Envelope(time.Second); got != 0 {
		t.Errorf("Envelope(end) = %v, want 0", got)
	}
}

func TestEnvelopeFade(t *testing.T) {
	tone := Lookup("soft")

	if got := tone.Envelope(0); got != tone.Gain {
		t.Errorf("Envelope(0) = %v, want %v", got, tone.Gain)
	}

	prev := tone.Gain
	for at := 100 * time.Millisecond; at < tone.Duration; at += 100 * time.Millisecond {
		got := tone.Envelope(at)
		if got >= prev {
			t.Fatalf("Envelope(%v) = %v, not decaying from %v", at, got, prev)
		}
		prev = got
	}

	near := tone.Envelope(tone.Duration - time.Millisecond)
	if near > 0.01 {
		t.Errorf("Envelope near end = %v, want close to zero", near)
	}
}

func TestEnvelopePulse(t *testing.T) {
	tone := Lookup("beep")

	if tone.Length() != 700*time.Millisecond {
		t.Errorf("Length() = %v, want 700ms", tone.Length())
	}

	tests := []struct {
		at time.Duration
		on bool
	}{
		{0, true},
		{50 * time.Millisecond, true},
		{150 * time.Millisecond, false},
		{300 * time.Millisecond, true},
		{450 * time.Millisecond, false},
		{650 * time.Millisecond, true},
		{700 * time.Millisecond, false},
	}
	for _, tt := range tests {
		got := tone.Envelope(tt.at)
		if tt.on && got != tone.Gain {
			t.Errorf("Envelope(%v) = %v, want on", tt.at, got)
		}
		if !tt.on && got != 0 {
			t.Errorf("Envelope(%v) = %v, want off", tt.at, got)
		}
	}
}

func TestRender(t *testing.T) {
	const rate = 8000

	for _, id := range IDs() {
		tone := Lookup(id)
		samples := tone.Render(rate)
		want := int(tone.Length().Seconds() * rate)
		if len(samples) != want {
			t.Errorf("%s: len(Render()) = %d, want %d", id, len(samples), want)
		}

		var peak float64
		for _, s := range samples {
			peak = math.Max(peak, math.Abs(float64(s)))
		}
		if peak == 0 {
			t.Errorf("%s: rendered silence", id)
		}
	}

	if got := Lookup("bell").Render(0); got != nil {
		t.Errorf("Render(0) = %d samples, want nil", len(got))
	}
}

func TestRenderDoubleToneIsLouder(t *testing.T) {
	const rate = 8000

	chime := Lookup("chime")
	single := chime
	single.Modifier = Plain

	energy := func(samples []int16) float64 {
		var sum float64
		for _, s := range samples {
			sum += float64(s) * float64(s)
		}
		return sum
	}

	if energy(chime.Render(rate)) <= energy(single.Render(rate)) {
		t.Error("double tone should add a second voice")
	}
}
