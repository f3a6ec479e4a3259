package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitgrid/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case StateAddHabit:
		return docStyle.Render(titleStyle.Render("New habit") + "\n\n" + m.form.View())
	case StateNote:
		return docStyle.Render(titleStyle.Render("Note for "+m.noteForm.Day) + "\n\n" + m.form.View())
	case StateRate:
		return docStyle.Render(titleStyle.Render("Rate "+m.ratingForm.Day) + "\n\n" + m.form.View())
	case StateConfirmDelete:
		return docStyle.Render(dangerStyle.Render("Delete habit") + "\n\n" + m.form.View())
	}

	title := titleStyle.Render(fmt.Sprintf("%s · week of %s", constants.AppName, m.weekStart()))
	grid := lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Render(m.habitsModel.View()),
		paneStyle.Render(m.weekModel.View()),
	)

	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		grid,
		m.statusLine(),
		m.help.View(m),
	))
}

func (m Model) weekStart() string {
	offset := (int(m.weekOf.Weekday()) + 6) % constants.WeekLength
	return m.weekOf.AddDate(0, 0, -offset).Format(constants.DateFormat)
}

func (m Model) statusLine() string {
	switch {
	case m.errMsg != "":
		return dangerStyle.Render("Error: " + m.errMsg)
	case m.warning != "":
		return warningStyle.Render(m.warning)
	case m.status != "":
		return statusStyle.Render(m.status)
	}
	return ""
}
