package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type AudioConfig struct {
	Backend    string `yaml:"backend"`
	SampleRate int    `yaml:"sample_rate"`
	DefaultCue string `yaml:"default_cue"`
}

type NotificationsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Icon    string `yaml:"icon"`
}

type TimerConfig struct {
	TickIntervalMs int `yaml:"tick_interval_ms"`
}

type StorageConfig struct {
	PrefsPath   string `yaml:"prefs_path"`
	HistoryPath string `yaml:"history_path"`
}

type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

type UIConfig struct {
	Theme     string   `yaml:"theme"`
	TaskTypes []string `yaml:"task_types"`
}

type Config struct {
	Audio         AudioConfig         `yaml:"audio"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Timer         TimerConfig         `yaml:"timer"`
	Storage       StorageConfig       `yaml:"storage"`
	Log           LogConfig           `yaml:"log"`
	UI            UIConfig            `yaml:"ui"`
}

func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			Backend:    "pulse",
			SampleRate: 44100,
			DefaultCue: "bell",
		},
		Notifications: NotificationsConfig{
			Enabled: true,
		},
		Timer: TimerConfig{
			TickIntervalMs: 1000,
		},
		Storage: StorageConfig{
			PrefsPath:   filepath.Join(DataDir(), "prefs.db"),
			HistoryPath: filepath.Join(DataDir(), "history.db"),
		},
		Log: LogConfig{
			Path:  filepath.Join(StateDir(), "pomodoro.log"),
			Level: "info",
		},
		UI: UIConfig{
			Theme:     "purple",
			TaskTypes: []string{"Deep Work", "Content Creation", "Client Calls", "Strategy Planning"},
		},
	}
}

func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "pomodoro", "config.yaml")
}

// DataDir is where preferences and history live by default
func DataDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".local", "share", "pomodoro")
}

// StateDir is where the log file lives by default
func StateDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".local", "state", "pomodoro")
}

func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// TickInterval falls back to one second for non-positive values
func (c *Config) TickInterval() time.Duration {
	if c.Timer.TickIntervalMs <= 0 {
		return time.Second
	}
	return time.Duration(c.Timer.TickIntervalMs) * time.Millisecond
}

// ExpandPath replaces a leading ~ with the home directory
func ExpandPath(p string) string {
	if p == "~" || len(p) > 1 && p[:2] == "~/" {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, p[1:])
	}
	return p
}
