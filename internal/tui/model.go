package tui

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/valentindosimont/pomodoro/internal/cue"
	"github.com/valentindosimont/pomodoro/internal/store"
	"github.com/valentindosimont/pomodoro/internal/timer"
	"github.com/valentindosimont/pomodoro/internal/tui/messages"
)

// Options holds the dependencies of the TUI. Everything except Engine may
// be nil.
type Options struct {
	Engine      *timer.Engine
	Player      *cue.Player
	Permissions *cue.Permissions
	Prefs       *store.Prefs
	History     *store.History
	Theme       string
	TaskTypes   []string
	Logger      zerolog.Logger
}

// Model is the main Bubbletea model
type Model struct {
	// Dependencies
	engine  *timer.Engine
	player  *cue.Player
	perms   *cue.Permissions
	prefs   *store.Prefs
	history *store.History
	log     zerolog.Logger

	// UI state
	width     int
	height    int
	state     timer.State
	keys      keyMap
	help      help.Model
	progress  progress.Model
	theme     int
	styles    styles
	taskTypes []string
	showStats bool
	lastError error

	// Duration editor
	editMode   bool
	editTarget timer.Mode
	editField  textinput.Model
	editErr    error

	// Completion notice
	showNotification bool
	noticeTitle      string
	noticeBody       string

	// Notification permission prompt
	showPermission bool

	// History
	today       *store.DailyStats
	taskTotals  []store.TaskTotal
	statsTable  table.Model
	statsLoaded bool

	msgChan   chan tea.Msg
	done      chan struct{}
	closeOnce sync.Once
	forwards  sync.WaitGroup
}

// New creates a new TUI model
func New(opts Options) *Model {
	ti := textinput.New()
	ti.Placeholder = "minutes"
	ti.CharLimit = 3
	ti.Width = 6

	taskTypes := opts.TaskTypes
	if len(taskTypes) == 0 {
		taskTypes = []string{"Deep Work"}
	}

	theme := themeIndex(opts.Theme)
	if opts.Prefs != nil {
		theme = themeIndex(opts.Prefs.LoadString(store.KeyTheme, themes[theme].Name))
	}

	m := &Model{
		engine:    opts.Engine,
		player:    opts.Player,
		perms:     opts.Permissions,
		prefs:     opts.Prefs,
		history:   opts.History,
		log:       opts.Logger.With().Str("component", "tui").Logger(),
		keys:      newKeyMap(),
		help:      help.New(),
		taskTypes: taskTypes,
		editField: ti,
		msgChan:   make(chan tea.Msg, 64),
		done:      make(chan struct{}),
	}
	m.setTheme(theme)
	m.refresh()

	m.engine.OnEvent(m.forward)

	return m
}

// forward hands engine events to the Bubbletea loop. Ticks may be dropped
// when the UI falls behind; the next snapshot catches up. Completions are
// delivered unless the model has been closed.
func (m *Model) forward(ev timer.Event) {
	msg := messages.TimerEventMsg{Event: ev}
	if ev.Type == timer.EventCycleCompleted {
		select {
		case <-m.done:
			return
		default:
		}
		m.forwards.Add(1)
		go func() {
			defer m.forwards.Done()
			select {
			case m.msgChan <- msg:
			case <-m.done:
			}
		}()
		return
	}
	select {
	case m.msgChan <- msg:
	default:
	}
}

// Close releases goroutines still waiting to deliver events. Call it once
// the program has exited.
func (m *Model) Close() {
	m.closeOnce.Do(func() { close(m.done) })
	m.forwards.Wait()
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	if m.perms != nil && m.player != nil && m.player.Notifies() && m.perms.NeedsPrompt() {
		m.showPermission = true
	}
	return tea.Batch(
		m.listenForMessages(),
		m.loadStatsCmd(),
	)
}

func (m *Model) listenForMessages() tea.Cmd {
	return func() tea.Msg {
		return <-m.msgChan
	}
}

func (m *Model) loadStatsCmd() tea.Cmd {
	if m.history == nil {
		return nil
	}
	h := m.history
	return func() tea.Msg {
		now := time.Now()
		today, err := h.StatsFor(now)
		if err != nil {
			return messages.StatsMsg{Err: err}
		}
		tasks, err := h.TaskTotals(now)
		if err != nil {
			return messages.StatsMsg{Err: err}
		}
		recent, err := h.RecentCycles(10)
		if err != nil {
			return messages.StatsMsg{Err: err}
		}
		return messages.StatsMsg{Today: today, Tasks: tasks, Recent: recent}
	}
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case messages.TimerEventMsg:
		m.refresh()
		if msg.Event.Type == timer.EventCycleCompleted {
			m.noticeTitle, m.noticeBody = cue.Message(cue.Context{
				FinishedMode: msg.Event.FinishedMode,
				NextMode:     msg.Event.NextMode,
			})
			m.showNotification = true
			cmds = append(cmds, m.loadStatsCmd())
		}
		cmds = append(cmds, m.listenForMessages())
		return m, tea.Batch(cmds...)

	case messages.StatsMsg:
		if msg.Err != nil {
			m.log.Warn().Err(msg.Err).Msg("load stats")
			return m, nil
		}
		m.today = msg.Today
		m.statsTable = m.buildStatsTable(msg.Tasks, msg.Recent)
		m.statsLoaded = true
		return m, nil

	case messages.ErrorMsg:
		m.lastError = msg.Err
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width - 4
		m.progress.Width = min(max(msg.Width-12, 10), 60)
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	if m.showPermission {
		m.handlePermissionKey(msg)
		return nil
	}

	if m.showNotification {
		m.showNotification = false
		return nil
	}

	// Text input owns the keyboard, including space
	if m.editMode {
		return m.handleEditKey(msg)
	}

	if m.showStats {
		m.showStats = false
		return nil
	}

	m.lastError = nil

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit

	case key.Matches(msg, m.keys.Toggle):
		m.engine.Toggle()

	case key.Matches(msg, m.keys.Reset):
		m.engine.Reset()

	case key.Matches(msg, m.keys.Focus):
		m.engine.SwitchMode(timer.Focus)

	case key.Matches(msg, m.keys.ShortBreak):
		m.engine.SwitchMode(timer.ShortBreak)

	case key.Matches(msg, m.keys.LongBreak):
		m.engine.SwitchMode(timer.LongBreak)

	case key.Matches(msg, m.keys.Longer):
		m.adjustDuration(1)

	case key.Matches(msg, m.keys.Shorter):
		m.adjustDuration(-1)

	case key.Matches(msg, m.keys.Edit):
		return m.openEditor()

	case key.Matches(msg, m.keys.Cue):
		next := cue.Next(m.state.Cue)
		m.engine.SelectCue(next)
		m.save(store.KeyCue, next)

	case key.Matches(msg, m.keys.TestCue):
		if m.player != nil {
			m.player.Preview(m.state.Cue)
		}

	case key.Matches(msg, m.keys.Task):
		next := m.nextTask()
		m.engine.SelectTask(next)
		m.save(store.KeyTaskType, next)

	case key.Matches(msg, m.keys.Theme):
		m.setTheme((m.theme + 1) % len(themes))
		m.save(store.KeyTheme, themes[m.theme].Name)

	case key.Matches(msg, m.keys.Stats):
		m.showStats = true
		return m.loadStatsCmd()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	m.refresh()
	return nil
}

func (m *Model) handlePermissionKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "y", "Y", "enter":
		if err := m.perms.Resolve(true); err != nil {
			m.log.Warn().Err(err).Msg("notification permission")
		}
	case "n", "N":
		if err := m.perms.Resolve(false); err != nil {
			m.log.Warn().Err(err).Msg("notification permission")
		}
	case "esc":
		m.perms.Dismiss()
	default:
		return
	}
	m.showPermission = false
}

func (m *Model) openEditor() tea.Cmd {
	if m.state.Running {
		return nil
	}
	m.editMode = true
	m.editTarget = m.state.Mode
	m.editErr = nil
	m.editField.SetValue(fmt.Sprintf("%d", m.state.Durations.Get(m.editTarget)))
	m.editField.CursorEnd()
	return m.editField.Focus()
}

func (m *Model) closeEditor() {
	m.editMode = false
	m.editErr = nil
	m.editField.Blur()
}

func (m *Model) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		err := m.engine.SetDurationText(m.editTarget, m.editField.Value())
		if err != nil {
			m.editErr = err
			return nil
		}
		m.closeEditor()
		m.refresh()
		return nil

	case "esc":
		m.closeEditor()
		return nil

	case "tab":
		m.editTarget = nextMode(m.editTarget)
		m.editErr = nil
		m.editField.SetValue(fmt.Sprintf("%d", m.state.Durations.Get(m.editTarget)))
		m.editField.CursorEnd()
		return nil
	}

	var cmd tea.Cmd
	m.editField, cmd = m.editField.Update(msg)
	m.editErr = nil
	return cmd
}

// adjustDuration nudges the current mode by delta minutes. Values outside
// the mode's bounds are rejected by the engine and shown as an error.
func (m *Model) adjustDuration(delta int) {
	if m.state.Running {
		return
	}
	mode := m.state.Mode
	err := m.engine.SetDuration(mode, m.state.Durations.Get(mode)+delta)
	if errors.Is(err, timer.ErrInvalidDuration) {
		lo, hi := timer.Bounds(mode)
		m.lastError = fmt.Errorf("%s stays between %d and %d minutes", mode.Label(), lo, hi)
	}
}

func (m *Model) nextTask() string {
	for i, t := range m.taskTypes {
		if t == m.state.Task {
			return m.taskTypes[(i+1)%len(m.taskTypes)]
		}
	}
	return m.taskTypes[0]
}

func (m *Model) setTheme(i int) {
	m.theme = i
	m.styles = newStyles(themes[i])
	width := m.progress.Width
	m.progress = progress.New(
		progress.WithGradient(string(themes[i].Primary), string(themes[i].Secondary)),
		progress.WithoutPercentage(),
	)
	if width > 0 {
		m.progress.Width = width
	}
}

func (m *Model) save(key, value string) {
	if m.prefs == nil {
		return
	}
	if err := m.prefs.SaveString(key, value); err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("preference not persisted")
	}
}

// refresh re-reads the engine state and updates dependent widgets
func (m *Model) refresh() {
	m.state = m.engine.Snapshot()
	m.keys.setRunning(m.state.Running)
}

func (m *Model) buildStatsTable(tasks []store.TaskTotal, recent []store.Cycle) table.Model {
	rows := make([]table.Row, 0, len(recent))
	for _, c := range recent {
		task := c.TaskType
		if task == "" {
			task = "-"
		}
		rows = append(rows, table.Row{
			c.CompletedAt.Local().Format("15:04"),
			c.Mode.Label(),
			task,
			fmt.Sprintf("%dm", c.Minutes),
		})
	}

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Time", Width: 6},
			{Title: "Session", Width: 12},
			{Title: "Task", Width: 18},
			{Title: "Length", Width: 7},
		}),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(min(len(rows), 10)+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).Foreground(themes[m.theme].Primary)
	s.Selected = s.Cell
	t.SetStyles(s)

	m.taskTotals = tasks
	return t
}

func nextMode(mode timer.Mode) timer.Mode {
	for i, candidate := range timer.Modes {
		if candidate == mode {
			return timer.Modes[(i+1)%len(timer.Modes)]
		}
	}
	return timer.Focus
}
