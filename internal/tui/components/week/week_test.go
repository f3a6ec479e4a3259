package week

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitgrid/internal/models"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func sampleWeek(affordance models.Affordance) models.WeekView {
	view := models.WeekView{
		Habit: models.Habit{ID: "h1", Name: "Run"},
		Start: "2024-01-08",
		End:   "2024-01-14",
	}
	days := []string{"2024-01-08", "2024-01-09", "2024-01-10", "2024-01-11", "2024-01-12", "2024-01-13", "2024-01-14"}
	for i, d := range days {
		scheduled := i%2 == 0
		future := i > 2
		view.Days = append(view.Days, models.DayView{
			Day:        d,
			Weekday:    models.AllWeekdays[i],
			Scheduled:  scheduled,
			Future:     future,
			Editable:   scheduled && !future,
			Affordance: affordance,
		})
	}
	return view
}

func TestSetWeekFocusesDay(t *testing.T) {
	m := New()
	_, ok := m.Selected()
	assert.False(t, ok)

	m.SetWeek(sampleWeek(models.AffordanceCheckbox), models.HabitStats{}, "2024-01-10")
	assert.Equal(t, 2, m.Cursor())

	// an unknown day keeps the cursor
	m.SetWeek(sampleWeek(models.AffordanceCheckbox), models.HabitStats{}, "2023-12-01")
	assert.Equal(t, 2, m.Cursor())

	m.Clear()
	_, ok = m.Selected()
	assert.False(t, ok)
}

func TestCursorStaysInBounds(t *testing.T) {
	m := New()
	m.SetWeek(sampleWeek(models.AffordanceCheckbox), models.HabitStats{}, "2024-01-08")

	m, _, handled := m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.True(t, handled)
	assert.Equal(t, 0, m.Cursor())

	for i := 0; i < 10; i++ {
		m, _, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	}
	assert.Equal(t, 6, m.Cursor())

	_, _, handled = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.False(t, handled)
}

func TestActivateByAffordance(t *testing.T) {
	tests := []struct {
		name       string
		affordance models.Affordance
		want       tea.Msg
	}{
		{"checkbox", models.AffordanceCheckbox, ToggleMsg{HabitID: "h1", Day: "2024-01-10", Completed: true}},
		{"note", models.AffordanceNote, NoteMsg{HabitID: "h1", Day: "2024-01-10"}},
		{"rating", models.AffordanceRating, RateMsg{HabitID: "h1", Day: "2024-01-10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.SetWeek(sampleWeek(tt.affordance), models.HabitStats{}, "2024-01-10")

			_, cmd, handled := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
			require.True(t, handled)
			require.NotNil(t, cmd)
			assert.Equal(t, tt.want, cmd())
		})
	}
}

func TestActivateBlockedDays(t *testing.T) {
	m := New()
	m.SetWeek(sampleWeek(models.AffordanceCheckbox), models.HabitStats{}, "2024-01-09")

	_, cmd, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, BlockedMsg{Reason: "Run is not scheduled for tuesday"}, cmd())

	m.SetWeek(sampleWeek(models.AffordanceCheckbox), models.HabitStats{}, "2024-01-12")
	_, cmd, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, BlockedMsg{Reason: "2024-01-12 is in the future"}, cmd())
}

func TestCell(t *testing.T) {
	assert.Contains(t, Cell(models.DayView{}), "·")
	assert.Contains(t, Cell(models.DayView{Scheduled: true, Future: true}), "-")
	assert.Equal(t, "[ ]", Cell(models.DayView{Scheduled: true}))
	assert.Contains(t, Cell(models.DayView{Scheduled: true, HasEntry: true, Completed: true}), "[x]")
	assert.Contains(t, Cell(models.DayView{Scheduled: true, HasEntry: true, Completed: true, Rating: intPtr(8)}), "8")
	assert.Contains(t, Cell(models.DayView{Scheduled: true, HasEntry: true, Completed: true, Note: strPtr("x")}), "✎")
}

func TestViewShowsDetailAndStats(t *testing.T) {
	m := New()
	assert.Contains(t, m.View(), "Select a habit")

	view := sampleWeek(models.AffordanceRating)
	view.Days[2].HasEntry = true
	view.Days[2].Completed = true
	view.Days[2].Rating = intPtr(6)
	m.SetWeek(view, models.HabitStats{CurrentStreak: 3, LongestStreak: 5, CompletionRate: 80, TotalEntries: 4}, "2024-01-10")

	out := m.View()
	assert.Contains(t, out, "2024-01-08 to 2024-01-14")
	assert.Contains(t, out, "rating: 6/10")
	assert.Contains(t, out, "Wed")
	assert.Contains(t, out, "80%")
}
