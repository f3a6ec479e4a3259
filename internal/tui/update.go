package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitgrid/internal/constants"
	"github.com/julianstephens/habitgrid/internal/models"
	habitlist "github.com/julianstephens/habitgrid/internal/tui/components/habits"
	"github.com/julianstephens/habitgrid/internal/tui/components/week"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h, v := docStyle.GetFrameSize()
		m.habitsModel.SetSize((msg.Width-h)/3, msg.Height-v-4)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateAddHabit:
		cmd = m.updateForm(msg, m.submitHabit)
	case StateNote:
		cmd = m.updateForm(msg, m.submitNote)
	case StateRate:
		cmd = m.updateForm(msg, m.submitRating)
	case StateConfirmDelete:
		cmd = m.updateForm(msg, m.submitDelete)
	default:
		return m.updateGrid(msg)
	}
	return m, cmd
}

func (m *Model) updateGrid(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case habitlist.SelectedMsg:
		m.reloadWeek("")
		return *m, nil

	case habitlist.AddHabitMsg:
		m.habitForm = &HabitFormModel{
			Days:    models.NewDaySet(models.AllWeekdays...).Strings(),
			Variant: string(models.VariantStandard),
		}
		m.form = NewHabitForm(m.habitForm)
		m.state = StateAddHabit
		return *m, m.form.Init()

	case habitlist.DeleteHabitMsg:
		m.deleteForm = &DeleteFormModel{HabitID: msg.ID, Name: msg.Name}
		m.form = NewDeleteForm(m.deleteForm)
		m.state = StateConfirmDelete
		return *m, m.form.Init()

	case week.ToggleMsg:
		entry, err := m.svc.MarkDay(context.Background(), msg.HabitID, msg.Day, msg.Completed)
		if err != nil {
			m.setError(err)
			return *m, nil
		}
		if entry.Completed {
			m.setStatus(fmt.Sprintf("Marked %s", entry.Day))
		} else {
			m.setStatus(fmt.Sprintf("Unmarked %s", entry.Day))
		}
		m.reload(entry.Day)
		return *m, nil

	case week.NoteMsg:
		m.noteForm = &NoteFormModel{HabitID: msg.HabitID, Day: msg.Day, Text: msg.Current}
		m.form = NewNoteForm(m.noteForm)
		m.state = StateNote
		return *m, m.form.Init()

	case week.RateMsg:
		m.ratingForm = &RatingFormModel{HabitID: msg.HabitID, Day: msg.Day}
		if msg.Current != nil {
			m.ratingForm.Rating = *msg.Current
		}
		m.form = NewRatingForm(m.ratingForm)
		m.state = StateRate
		return *m, m.form.Init()

	case week.BlockedMsg:
		m.setWarning(msg.Reason)
		return *m, nil

	case tea.KeyMsg:
		if m.habitsModel.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return *m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return *m, nil
		case key.Matches(msg, m.keys.PrevWeek):
			m.weekOf = m.weekOf.AddDate(0, 0, -constants.WeekLength)
			m.reloadWeek("")
			return *m, nil
		case key.Matches(msg, m.keys.NextWeek):
			m.weekOf = m.weekOf.AddDate(0, 0, constants.WeekLength)
			m.reloadWeek("")
			return *m, nil
		case key.Matches(msg, m.keys.Today):
			m.weekOf = m.svc.Today()
			m.reloadWeek(m.weekOf.Format(constants.DateFormat))
			return *m, nil
		}

		var cmd tea.Cmd
		var handled bool
		m.weekModel, cmd, handled = m.weekModel.Update(msg)
		if handled {
			return *m, cmd
		}
	}

	var cmd tea.Cmd
	m.habitsModel, cmd = m.habitsModel.Update(msg)
	return *m, cmd
}

// updateForm drives the active huh form and calls submit once it completes
func (m *Model) updateForm(msg tea.Msg, submit func() error) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateGrid
		return nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if err := submit(); err != nil {
			m.setError(err)
		}
		m.state = StateGrid
	case huh.StateAborted:
		m.state = StateGrid
	}
	return cmd
}

func (m *Model) submitHabit() error {
	h, err := m.svc.CreateHabit(context.Background(), m.owner, models.HabitInput{
		Name:       m.habitForm.Name,
		Color:      m.habitForm.Color,
		Frequency:  frequencyFor(m.habitForm.Days),
		DaysOfWeek: m.habitForm.Days,
		Variant:    m.habitForm.Variant,
	})
	if err != nil {
		return err
	}
	m.setStatus(fmt.Sprintf("Added %s", h.Name))
	m.reload("")
	return nil
}

func (m *Model) submitNote() error {
	note := m.noteForm.Text
	entry, err := m.svc.SaveEntry(context.Background(), models.EntryInput{
		HabitID: m.noteForm.HabitID,
		Date:    m.noteForm.Day,
		Note:    &note,
	})
	if err != nil {
		return err
	}
	m.setStatus(fmt.Sprintf("Saved note for %s", entry.Day))
	m.reload(entry.Day)
	return nil
}

func (m *Model) submitRating() error {
	rating := m.ratingForm.Rating
	entry, err := m.svc.SaveEntry(context.Background(), models.EntryInput{
		HabitID: m.ratingForm.HabitID,
		Date:    m.ratingForm.Day,
		Rating:  &rating,
	})
	if err != nil {
		return err
	}
	m.setStatus(fmt.Sprintf("Rated %s %d/%d", entry.Day, rating, constants.MaxRating))
	m.reload(entry.Day)
	return nil
}

func (m *Model) submitDelete() error {
	if !m.deleteForm.Confirm {
		return nil
	}
	if err := m.svc.DeleteHabit(context.Background(), m.deleteForm.HabitID); err != nil {
		return err
	}
	m.setStatus(fmt.Sprintf("Deleted %s", m.deleteForm.Name))
	m.reload("")
	return nil
}

// frequencyFor labels a schedule; the label does not affect when a habit is due
func frequencyFor(days []string) string {
	if len(days) == len(models.AllWeekdays) {
		return string(models.FrequencyDaily)
	}
	return string(models.FrequencyWeekly)
}
