// Package week renders the seven-day grid of one habit.
package week

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitgrid/internal/constants"
	"github.com/julianstephens/habitgrid/internal/models"
)

// ToggleMsg flips the completion of a checkbox day
type ToggleMsg struct {
	HabitID   string
	Day       string
	Completed bool
}

// NoteMsg asks for the learning log note of a day
type NoteMsg struct {
	HabitID string
	Day     string
	Current string
}

// RateMsg asks for the rating of a day
type RateMsg struct {
	HabitID string
	Day     string
	Current *int
}

// BlockedMsg reports why the selected day cannot be edited
type BlockedMsg struct {
	Reason string
}

type KeyMap struct {
	Left     key.Binding
	Right    key.Binding
	Activate key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev day"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next day"),
		),
		Activate: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "check/note/rate"),
		),
	}
}

var (
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(6).Align(lipgloss.Center)
	cellStyle       = lipgloss.NewStyle().Width(6).Align(lipgloss.Center)
	cursorStyle     = cellStyle.Background(lipgloss.Color("236")).Foreground(lipgloss.Color("205")).Bold(true)
	doneStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	offStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	detailStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).MarginTop(1)
	statsLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type Model struct {
	view   models.WeekView
	stats  models.HabitStats
	cursor int
	loaded bool
	keys   KeyMap
}

func New() Model {
	return Model{keys: DefaultKeyMap()}
}

func (m Model) Keys() KeyMap {
	return m.keys
}

// SetWeek shows a new week. When focusDay falls inside it the cursor moves there.
func (m *Model) SetWeek(view models.WeekView, stats models.HabitStats, focusDay string) {
	m.view = view
	m.stats = stats
	m.loaded = true
	for i, d := range view.Days {
		if d.Day == focusDay {
			m.cursor = i
			return
		}
	}
	if m.cursor >= len(view.Days) {
		m.cursor = 0
	}
}

func (m *Model) Clear() {
	m.view = models.WeekView{}
	m.stats = models.HabitStats{}
	m.loaded = false
}

func (m Model) Cursor() int {
	return m.cursor
}

// Selected returns the day under the cursor
func (m Model) Selected() (models.DayView, bool) {
	if !m.loaded || m.cursor < 0 || m.cursor >= len(m.view.Days) {
		return models.DayView{}, false
	}
	return m.view.Days[m.cursor], true
}

// Update handles grid keys and reports whether the key was consumed
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !m.loaded {
		return m, nil, false
	}

	switch {
	case key.Matches(keyMsg, m.keys.Left):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil, true
	case key.Matches(keyMsg, m.keys.Right):
		if m.cursor < len(m.view.Days)-1 {
			m.cursor++
		}
		return m, nil, true
	case key.Matches(keyMsg, m.keys.Activate):
		return m, m.activate(), true
	}
	return m, nil, false
}

func (m Model) activate() tea.Cmd {
	day, ok := m.Selected()
	if !ok {
		return nil
	}
	if !day.Editable {
		reason := fmt.Sprintf("%s is not scheduled for %s", m.view.Habit.Name, day.Weekday)
		if day.Future {
			reason = fmt.Sprintf("%s is in the future", day.Day)
		}
		return func() tea.Msg { return BlockedMsg{Reason: reason} }
	}

	habitID := m.view.Habit.ID
	switch day.Affordance {
	case models.AffordanceNote:
		current := ""
		if day.Note != nil {
			current = *day.Note
		}
		return func() tea.Msg { return NoteMsg{HabitID: habitID, Day: day.Day, Current: current} }
	case models.AffordanceRating:
		return func() tea.Msg { return RateMsg{HabitID: habitID, Day: day.Day, Current: day.Rating} }
	default:
		return func() tea.Msg { return ToggleMsg{HabitID: habitID, Day: day.Day, Completed: !day.Completed} }
	}
}

// Cell renders the content of one day
func Cell(d models.DayView) string {
	switch {
	case !d.Scheduled:
		return offStyle.Render("·")
	case d.Future:
		return offStyle.Render("-")
	case !d.HasEntry:
		return "[ ]"
	case d.Rating != nil:
		return doneStyle.Render(fmt.Sprintf("%d", *d.Rating))
	case d.Note != nil && d.Completed:
		return doneStyle.Render("✎")
	case d.Completed:
		return doneStyle.Render("[x]")
	}
	return "[ ]"
}

func (m Model) View() string {
	if !m.loaded {
		return "\n  Select a habit."
	}

	var headers, cells []string
	for i, d := range m.view.Days {
		name := string(d.Weekday)
		headers = append(headers, headerStyle.Render(strings.ToUpper(name[:1])+name[1:3]))
		style := cellStyle
		if i == m.cursor {
			style = cursorStyle
		}
		cells = append(cells, style.Render(Cell(d)))
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(m.view.Habit.Name))
	b.WriteString(fmt.Sprintf("  %s to %s\n\n", m.view.Start, m.view.End))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, headers...))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	b.WriteString("\n")
	b.WriteString(detailStyle.Render(m.detail()))
	b.WriteString("\n\n")
	b.WriteString(m.statsLine())
	return b.String()
}

func (m Model) detail() string {
	d, ok := m.Selected()
	if !ok {
		return ""
	}
	lines := []string{d.Day}
	if d.Note != nil {
		lines = append(lines, "note: "+*d.Note)
	}
	if d.Rating != nil {
		lines = append(lines, fmt.Sprintf("rating: %d/%d", *d.Rating, constants.MaxRating))
	}
	return strings.Join(lines, "\n")
}

func (m Model) statsLine() string {
	s := m.stats
	return statsLabelStyle.Render("streak ") + fmt.Sprintf("%d", s.CurrentStreak) +
		statsLabelStyle.Render("  best ") + fmt.Sprintf("%d", s.LongestStreak) +
		statsLabelStyle.Render("  rate ") + fmt.Sprintf("%.0f%%", s.CompletionRate) +
		statsLabelStyle.Render("  entries ") + fmt.Sprintf("%d", s.TotalEntries)
}
