package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	PrevWeek key.Binding
	NextWeek key.Binding
	Today    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		PrevWeek: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev week"),
		),
		NextWeek: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next week"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "this week"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (m Model) ShortHelp() []key.Binding {
	wk := m.weekModel.Keys()
	hk := m.habitsModel.Keys()
	return []key.Binding{wk.Activate, hk.Add, m.keys.PrevWeek, m.keys.NextWeek, m.keys.Help, m.keys.Quit}
}

// FullHelp implements help.KeyMap
func (m Model) FullHelp() [][]key.Binding {
	wk := m.weekModel.Keys()
	hk := m.habitsModel.Keys()
	return [][]key.Binding{
		{wk.Left, wk.Right, wk.Activate},
		{hk.Add, hk.Delete},
		{m.keys.PrevWeek, m.keys.NextWeek, m.keys.Today},
		{m.keys.Help, m.keys.Quit},
	}
}
