package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Audio.DefaultCue != "bell" {
		t.Errorf("Audio.DefaultCue = %q, want bell", cfg.Audio.DefaultCue)
	}
	if len(cfg.UI.TaskTypes) != 4 {
		t.Errorf("UI.TaskTypes = %v, want 4 defaults", cfg.UI.TaskTypes)
	}
	if cfg.TickInterval() != time.Second {
		t.Errorf("TickInterval() = %v, want 1s", cfg.TickInterval())
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
audio:
  backend: beep
  default_cue: chime
timer:
  tick_interval_ms: 250
ui:
  theme: honey
  task_types: [Writing, Reading]
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Audio.Backend != "beep" || cfg.Audio.DefaultCue != "chime" {
		t.Errorf("Audio = %+v", cfg.Audio)
	}
	if cfg.Audio.SampleRate != 44100 {
		t.Errorf("Audio.SampleRate = %d, want default kept", cfg.Audio.SampleRate)
	}
	if cfg.TickInterval() != 250*time.Millisecond {
		t.Errorf("TickInterval() = %v, want 250ms", cfg.TickInterval())
	}
	if cfg.UI.Theme != "honey" || len(cfg.UI.TaskTypes) != 2 {
		t.Errorf("UI = %+v", cfg.UI)
	}
	if !cfg.Notifications.Enabled {
		t.Error("Notifications.Enabled should keep its default")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("audio: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on invalid yaml")
	}
}

func TestTickIntervalNonPositive(t *testing.T) {
	cfg := Default()
	cfg.Timer.TickIntervalMs = 0
	if cfg.TickInterval() != time.Second {
		t.Errorf("TickInterval() = %v, want 1s", cfg.TickInterval())
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()
	tests := []struct {
		in, want string
	}{
		{"~/x/prefs.db", filepath.Join(home, "x", "prefs.db")},
		{"~", home},
		{"/tmp/a", "/tmp/a"},
		{"rel/path", "rel/path"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
