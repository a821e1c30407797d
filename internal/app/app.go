package app

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/valentindosimont/pomodoro/internal/config"
	"github.com/valentindosimont/pomodoro/internal/cue"
	"github.com/valentindosimont/pomodoro/internal/logging"
	"github.com/valentindosimont/pomodoro/internal/store"
	"github.com/valentindosimont/pomodoro/internal/timer"
	"github.com/valentindosimont/pomodoro/internal/tui"
)

// Config holds application configuration
type Config struct {
	PrefsPath    string
	HistoryPath  string
	LogPath      string
	LogLevel     string
	TickInterval time.Duration

	AudioBackend string
	SampleRate   int
	DefaultCue   string

	// Cue replaces the stored cue when set
	Cue string

	Notify     bool
	NotifyIcon string

	Theme     string
	TaskTypes []string

	// Clock drives the timer. Nil means the wall clock.
	Clock clockwork.Clock
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return fromFile(config.Default())
}

func fromFile(fc *config.Config) Config {
	return Config{
		PrefsPath:    config.ExpandPath(fc.Storage.PrefsPath),
		HistoryPath:  config.ExpandPath(fc.Storage.HistoryPath),
		LogPath:      config.ExpandPath(fc.Log.Path),
		LogLevel:     fc.Log.Level,
		TickInterval: fc.TickInterval(),
		AudioBackend: fc.Audio.Backend,
		SampleRate:   fc.Audio.SampleRate,
		DefaultCue:   fc.Audio.DefaultCue,
		Notify:       fc.Notifications.Enabled,
		NotifyIcon:   config.ExpandPath(fc.Notifications.Icon),
		Theme:        fc.UI.Theme,
		TaskTypes:    fc.UI.TaskTypes,
	}
}

// LoadConfig loads configuration from file and merges with defaults. An
// unreadable file yields the defaults together with the error.
func LoadConfig(path string) (Config, error) {
	fileCfg, err := config.Load(path)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("load config %s: %w", path, err)
	}
	return fromFile(fileCfg), nil
}

// WithDataDir points both stores into dir
func (c Config) WithDataDir(dir string) Config {
	dir = config.ExpandPath(dir)
	c.PrefsPath = filepath.Join(dir, "prefs.db")
	c.HistoryPath = filepath.Join(dir, "history.db")
	return c
}

// App is the main application
type App struct {
	config    Config
	log       zerolog.Logger
	logCloser io.Closer

	prefs   *store.Prefs
	history *store.History
	perms   *cue.Permissions
	player  *cue.Player
	engine  *timer.Engine

	pending sync.WaitGroup
}

// New creates a new App. Storage and audio failures degrade the app rather
// than abort it.
func New(cfg Config) (*App, error) {
	// An unwritable log file leaves the app running without logs
	log, logCloser, err := logging.New(logging.Options{Path: cfg.LogPath, Level: cfg.LogLevel})
	if err != nil {
		log, logCloser = zerolog.Nop(), io.NopCloser(nil)
	}

	a := &App{
		config:    cfg,
		log:       log,
		logCloser: logCloser,
	}

	// Preferences fall back to memory so the session still works
	var kv store.KV
	if bolt, err := store.OpenBolt(cfg.PrefsPath); err != nil {
		log.Warn().Err(err).Str("path", cfg.PrefsPath).Msg("preferences unavailable, keeping them in memory")
		kv = store.NewMemoryKV()
	} else {
		kv = bolt
	}
	a.prefs = store.NewPrefs(kv)

	if h, err := store.OpenHistory(cfg.HistoryPath); err != nil {
		log.Warn().Err(err).Str("path", cfg.HistoryPath).Msg("history unavailable")
	} else {
		a.history = h
	}

	durations, err := a.prefs.LoadDurations()
	if err != nil {
		log.Warn().Err(err).Msg("using default durations")
	}

	cueID := a.prefs.LoadString(store.KeyCue, cfg.DefaultCue)
	if cfg.Cue != "" {
		cueID = cfg.Cue
	}
	if !cue.Known(cueID) {
		cueID = cue.DefaultCue
	}

	a.perms = cue.NewPermissions(a.prefs)

	var notifier cue.Notifier
	if cfg.Notify {
		notifier = cue.DesktopNotifier{Icon: cfg.NotifyIcon}
	}
	a.player = cue.NewPlayer(cue.PlayerConfig{
		Output:      cue.NewOutputFactory(cfg.AudioBackend, cfg.SampleRate),
		Notifier:    notifier,
		Permissions: a.perms,
		Logger:      log,
	})

	a.engine = timer.NewEngine(timer.EngineConfig{
		Durations:    durations,
		Cue:          cueID,
		TickInterval: cfg.TickInterval,
		Clock:        cfg.Clock,
		Logger:       log,
	})
	if len(cfg.TaskTypes) > 0 {
		a.engine.SelectTask(a.prefs.LoadString(store.KeyTaskType, cfg.TaskTypes[0]))
	}
	a.engine.OnEvent(a.handleEvent)

	log.Info().
		Int("focus", durations.Focus).
		Int("short_break", durations.ShortBreak).
		Int("long_break", durations.LongBreak).
		Str("cue", cueID).
		Msg("started")

	return a, nil
}

// Engine returns the timer engine
func (a *App) Engine() *timer.Engine {
	return a.engine
}

// Run starts the application
func (a *App) Run() error {
	model := tui.New(tui.Options{
		Engine:      a.engine,
		Player:      a.player,
		Permissions: a.perms,
		Prefs:       a.prefs,
		History:     a.history,
		Theme:       a.config.Theme,
		TaskTypes:   a.config.TaskTypes,
		Logger:      a.log,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err := p.Run()
	model.Close()
	return err
}

// Close stops the timer and releases every resource
func (a *App) Close() error {
	a.engine.Close()
	a.pending.Wait()

	if err := a.player.Close(); err != nil {
		a.log.Debug().Err(err).Msg("close audio output")
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.log.Warn().Err(err).Msg("close history")
		}
	}
	if err := a.prefs.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close preferences")
	}

	a.log.Info().Msg("stopped")
	return a.logCloser.Close()
}

// handleEvent runs on the goroutine that produced ev and must not block
func (a *App) handleEvent(ev timer.Event) {
	switch ev.Type {
	case timer.EventCycleCompleted:
		a.player.Play(ev.Cue, cue.Context{FinishedMode: ev.FinishedMode, NextMode: ev.NextMode})
		a.record(ev)

	case timer.EventDurationChanged:
		if err := a.prefs.SaveDuration(ev.Mode, ev.Minutes); err != nil {
			a.log.Warn().Err(err).Str("mode", ev.Mode.String()).Msg("duration not persisted")
		}
	}
}

func (a *App) record(ev timer.Event) {
	if a.history == nil {
		return
	}
	task := ev.Task
	if ev.FinishedMode != timer.Focus {
		task = ""
	}
	c := store.Cycle{
		Mode:        ev.FinishedMode,
		TaskType:    task,
		Minutes:     ev.Minutes,
		CompletedAt: ev.At,
	}

	a.pending.Add(1)
	go func() {
		defer a.pending.Done()
		if err := a.history.RecordCycle(c); err != nil {
			a.log.Warn().Err(err).Msg("cycle not recorded")
		}
	}()
}
