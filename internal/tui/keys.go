package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle     key.Binding
	Reset      key.Binding
	Focus      key.Binding
	ShortBreak key.Binding
	LongBreak  key.Binding
	Longer     key.Binding
	Shorter    key.Binding
	Edit       key.Binding
	Cue        key.Binding
	TestCue    key.Binding
	Task       key.Binding
	Theme      key.Binding
	Stats      key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "start/pause"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Focus: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "focus"),
		),
		ShortBreak: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "short break"),
		),
		LongBreak: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "long break"),
		),
		Longer: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "longer"),
		),
		Shorter: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "shorter"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "set minutes"),
		),
		Cue: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "sound"),
		),
		TestCue: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "test sound"),
		),
		Task: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "task"),
		),
		Theme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "theme"),
		),
		Stats: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stats"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// setRunning disables the duration controls while the countdown runs
func (k *keyMap) setRunning(running bool) {
	k.Longer.SetEnabled(!running)
	k.Shorter.SetEnabled(!running)
	k.Edit.SetEnabled(!running)
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Reset, k.Edit, k.Cue, k.Stats, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Reset, k.Focus, k.ShortBreak, k.LongBreak},
		{k.Longer, k.Shorter, k.Edit},
		{k.Cue, k.TestCue, k.Task, k.Theme},
		{k.Stats, k.Help, k.Quit},
	}
}
