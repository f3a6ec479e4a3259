package habits

import (
	"math"
	"time"

	"github.com/julianstephens/habitgrid/internal/constants"
	"github.com/julianstephens/habitgrid/internal/models"
)

// ComputeStats derives completion metrics from a habit's entries.
// entries must be ordered newest first. today is midnight of the current day in loc.
func ComputeStats(habit models.Habit, entries []models.HabitEntry, policy models.StreakPolicy, today time.Time) models.HabitStats {
	stats := models.HabitStats{
		HabitID:      habit.ID,
		TotalEntries: len(entries),
	}
	for _, e := range entries {
		if !e.Completed {
			continue
		}
		stats.CompletedEntries++
		if stats.LastCompletedDay == "" {
			stats.LastCompletedDay = e.Day
		}
	}
	if stats.TotalEntries > 0 {
		rate := float64(stats.CompletedEntries) / float64(stats.TotalEntries) * 100
		stats.CompletionRate = math.Round(rate*100) / 100
	}

	if policy == models.StreakByEntries {
		stats.CurrentStreak, stats.LongestStreak = entryStreaks(entries)
	} else {
		stats.CurrentStreak, stats.LongestStreak = calendarStreaks(habit, entries, today)
	}
	return stats
}

// entryStreaks walks stored rows only. Days without a row are ignored.
func entryStreaks(entries []models.HabitEntry) (current, longest int) {
	counting := true
	run := 0
	for _, e := range entries {
		if e.Completed {
			run++
			if counting {
				current++
			}
		} else {
			counting = false
			run = 0
		}
		if run > longest {
			longest = run
		}
	}
	return current, longest
}

// dayOutcome is what a single calendar day contributes to a streak
type dayOutcome int

const (
	outcomeSkip dayOutcome = iota
	outcomeHit
	outcomeMiss
)

// calendarStreaks treats a due day without an entry as a miss. Today is never a
// miss because it is still open; neither are days after today.
func calendarStreaks(habit models.Habit, entries []models.HabitEntry, today time.Time) (current, longest int) {
	if len(entries) == 0 {
		return 0, 0
	}

	loc := today.Location()
	byDay := make(map[string]models.HabitEntry, len(entries))
	for _, e := range entries {
		byDay[e.Day] = e
	}

	first, err := time.ParseInLocation(constants.DateFormat, entries[len(entries)-1].Day, loc)
	if err != nil {
		return entryStreaks(entries)
	}
	last, err := time.ParseInLocation(constants.DateFormat, entries[0].Day, loc)
	if err != nil {
		return entryStreaks(entries)
	}
	if last.Before(today) {
		last = today
	}

	outcome := func(day time.Time) dayOutcome {
		if e, ok := byDay[day.Format(constants.DateFormat)]; ok {
			if e.Completed {
				return outcomeHit
			}
			return outcomeMiss
		}
		if !day.Before(today) || !habit.IsDueOn(day) {
			return outcomeSkip
		}
		return outcomeMiss
	}

	run := 0
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		switch outcome(day) {
		case outcomeHit:
			run++
			if run > longest {
				longest = run
			}
		case outcomeMiss:
			run = 0
		}
	}

	for day := last; !day.Before(first); day = day.AddDate(0, 0, -1) {
		o := outcome(day)
		if o == outcomeMiss {
			break
		}
		if o == outcomeHit {
			current++
		}
	}

	return current, longest
}
