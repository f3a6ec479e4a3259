package habits

import (
	"time"

	"github.com/julianstephens/habitgrid/internal/constants"
	"github.com/julianstephens/habitgrid/internal/models"
)

// WeekStart returns the Monday of the week containing day
func WeekStart(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return time.Date(day.Year(), day.Month(), day.Day()-offset, 0, 0, 0, 0, day.Location())
}

// ProjectWeek lays out the Monday-started week containing day as seven cells.
// entries may cover any range; only those inside the week are used.
func ProjectWeek(habit models.Habit, entries []models.HabitEntry, day, today time.Time) models.WeekView {
	start := WeekStart(day)
	byDay := make(map[string]models.HabitEntry, len(entries))
	for _, e := range entries {
		byDay[e.Day] = e
	}

	affordance := AffordanceFor(habit.Variant)
	view := models.WeekView{
		Habit: habit,
		Start: start.Format(constants.DateFormat),
		End:   start.AddDate(0, 0, constants.WeekLength-1).Format(constants.DateFormat),
		Days:  make([]models.DayView, 0, constants.WeekLength),
	}

	for i := 0; i < constants.WeekLength; i++ {
		d := start.AddDate(0, 0, i)
		key := d.Format(constants.DateFormat)
		cell := models.DayView{
			Day:        key,
			Weekday:    models.WeekdayOf(d),
			Scheduled:  habit.IsDueOn(d),
			Future:     d.After(today),
			Affordance: affordance,
		}
		cell.Editable = cell.Scheduled && !cell.Future
		if e, ok := byDay[key]; ok {
			cell.HasEntry = true
			cell.EntryID = e.ID
			cell.Completed = e.Completed
			cell.Note = e.Note
			cell.Rating = e.Rating
		}
		view.Days = append(view.Days, cell)
	}

	return view
}
