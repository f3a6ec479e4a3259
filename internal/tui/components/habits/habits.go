package habits

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitgrid/internal/models"
)

type AddHabitMsg struct{}

type DeleteHabitMsg struct {
	ID   string
	Name string
}

// SelectedMsg is sent when the highlighted habit changes
type SelectedMsg struct {
	ID string
}

type Item struct {
	Habit     models.Habit
	DoneToday bool
}

func (i Item) Title() string {
	if i.DoneToday {
		return "✓ " + i.Habit.Name
	}
	return "○ " + i.Habit.Name
}

func (i Item) Description() string {
	parts := []string{daysLabel(i.Habit.DaysOfWeek)}
	if i.Habit.Variant != models.VariantStandard {
		parts = append(parts, string(i.Habit.Variant))
	}
	if i.Habit.IsSystemDefined {
		parts = append(parts, "built-in")
	}
	return strings.Join(parts, " · ")
}

func (i Item) FilterValue() string { return i.Habit.Name }

func daysLabel(days models.DaySet) string {
	if len(days) == len(models.AllWeekdays) {
		return "every day"
	}
	short := make([]string, 0, len(days))
	for _, d := range days {
		short = append(short, string(d)[:3])
	}
	return strings.Join(short, ",")
}

type KeyMap struct {
	Add    key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add habit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete habit"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	// left and right move through the week grid
	l.KeyMap.NextPage.SetKeys("pgdown")
	l.KeyMap.PrevPage.SetKeys("pgup")
	l.KeyMap.Quit.SetEnabled(false)

	return Model{
		list: l,
		keys: DefaultKeyMap(),
	}
}

func (m Model) Keys() KeyMap {
	return m.keys
}

// SetHabits replaces the list, keeping the selection on the same habit when it still exists
func (m *Model) SetHabits(habits []models.Habit, doneToday map[string]bool) {
	selected := m.SelectedID()

	items := make([]list.Item, len(habits))
	for i, h := range habits {
		items[i] = Item{Habit: h, DoneToday: doneToday[h.ID]}
	}
	m.list.SetItems(items)

	for i, h := range habits {
		if h.ID == selected {
			m.list.Select(i)
			return
		}
	}
}

// SelectedID returns the id of the highlighted habit, or "" when the list is empty
func (m Model) SelectedID() string {
	if i, ok := m.list.SelectedItem().(Item); ok {
		return i.Habit.ID
	}
	return ""
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteHabitMsg{ID: i.Habit.ID, Name: i.Habit.Name} }
			}
			return m, nil
		}
	}

	before := m.SelectedID()
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	if after := m.SelectedID(); after != before && after != "" {
		return m, tea.Batch(cmd, func() tea.Msg { return SelectedMsg{ID: after} })
	}
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
