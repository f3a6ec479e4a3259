// Package tui is the terminal weekly grid: a habit list next to the week of the selected habit.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitgrid/internal/constants"
	"github.com/julianstephens/habitgrid/internal/habits"
	habitlist "github.com/julianstephens/habitgrid/internal/tui/components/habits"
	"github.com/julianstephens/habitgrid/internal/tui/components/week"
)

type SessionState int

const (
	StateGrid SessionState = iota
	StateAddHabit
	StateNote
	StateRate
	StateConfirmDelete
)

type Model struct {
	svc         *habits.Service
	owner       string
	state       SessionState
	keys        KeyMap
	help        help.Model
	habitsModel habitlist.Model
	weekModel   week.Model
	form        *huh.Form
	habitForm   *HabitFormModel
	noteForm    *NoteFormModel
	ratingForm  *RatingFormModel
	deleteForm  *DeleteFormModel
	// weekOf is any day of the displayed week
	weekOf   time.Time
	status   string
	warning  string
	errMsg   string
	quitting bool
	width    int
	height   int
}

func NewModel(svc *habits.Service, owner string) Model {
	m := Model{
		svc:         svc,
		owner:       owner,
		state:       StateGrid,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		habitsModel: habitlist.New(0, 0),
		weekModel:   week.New(),
		weekOf:      svc.Today(),
	}
	m.reload(svc.Today().Format(constants.DateFormat))
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// reload refreshes the habit list and the week of the selected habit.
// focusDay moves the grid cursor when it falls inside the week.
func (m *Model) reload(focusDay string) {
	ctx := context.Background()
	list, err := m.svc.ListHabits(ctx, m.owner)
	if err != nil {
		m.setError(err)
		return
	}

	today := m.svc.Today().Format(constants.DateFormat)
	done := make(map[string]bool, len(list))
	for _, h := range list {
		entries, err := m.svc.Entries(ctx, h.ID, today, today)
		if err != nil {
			m.setError(err)
			return
		}
		done[h.ID] = len(entries) > 0 && entries[0].Completed
	}
	m.habitsModel.SetHabits(list, done)
	m.reloadWeek(focusDay)
}

func (m *Model) reloadWeek(focusDay string) {
	id := m.habitsModel.SelectedID()
	if id == "" {
		m.weekModel.Clear()
		return
	}

	ctx := context.Background()
	view, err := m.svc.WeekView(ctx, id, m.weekOf.Format(constants.DateFormat))
	if err != nil {
		m.setError(err)
		return
	}
	stats, err := m.svc.GetHabitStats(ctx, id)
	if err != nil {
		m.setError(err)
		return
	}
	m.weekModel.SetWeek(view, stats, focusDay)
}

func (m *Model) setError(err error) {
	m.status, m.warning = "", ""
	m.errMsg = err.Error()
}

func (m *Model) setWarning(s string) {
	m.status, m.errMsg = "", ""
	m.warning = s
}

func (m *Model) setStatus(s string) {
	m.errMsg, m.warning = "", ""
	m.status = s
}
