package models

import (
	"strings"
	"time"
)

// Weekday is a lower-case English weekday name
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// AllWeekdays lists the canonical weekday names, Monday first
var AllWeekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayIndex = map[Weekday]time.Weekday{
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
	Sunday:    time.Sunday,
}

// ParseWeekday accepts a weekday name in any case, surrounded by any whitespace.
func ParseWeekday(s string) (Weekday, bool) {
	w := Weekday(strings.ToLower(strings.TrimSpace(s)))
	_, ok := weekdayIndex[w]
	return w, ok
}

// WeekdayOf returns the weekday name of t in t's location
func WeekdayOf(t time.Time) Weekday {
	return AllWeekdays[(int(t.Weekday())+6)%7]
}

// DaySet is the set of weekdays a habit is due on. Stored in Monday-first order without duplicates.
type DaySet []Weekday

// NewDaySet builds a canonical DaySet, dropping duplicates. Unknown names are ignored.
func NewDaySet(days ...Weekday) DaySet {
	seen := make(map[Weekday]bool, len(days))
	for _, d := range days {
		seen[d] = true
	}
	set := make(DaySet, 0, len(seen))
	for _, w := range AllWeekdays {
		if seen[w] {
			set = append(set, w)
		}
	}
	return set
}

// Contains reports whether w is in the set
func (d DaySet) Contains(w Weekday) bool {
	for _, day := range d {
		if day == w {
			return true
		}
	}
	return false
}

// Strings returns the set as plain strings
func (d DaySet) Strings() []string {
	out := make([]string, len(d))
	for i, w := range d {
		out[i] = string(w)
	}
	return out
}

// Frequency is a descriptive label. The schedule itself lives in DaysOfWeek.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Variant selects how completions for a habit are captured
type Variant string

const (
	VariantStandard    Variant = "standard"
	VariantLearningLog Variant = "learning-log"
	VariantDayRating   Variant = "day-rating"
)

func (v Variant) IsValid() bool {
	switch v {
	case VariantStandard, VariantLearningLog, VariantDayRating:
		return true
	}
	return false
}

// Habit is a user-owned recurring activity with a weekly schedule
type Habit struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Color           string    `json:"color,omitempty"` // #RRGGBB
	Frequency       Frequency `json:"frequency"`
	DaysOfWeek      DaySet    `json:"days_of_week"`
	Variant         Variant   `json:"variant"`
	IsSystemDefined bool      `json:"is_system_defined"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsDueOn reports whether the habit is scheduled on the weekday of day
func (h Habit) IsDueOn(day time.Time) bool {
	return h.DaysOfWeek.Contains(WeekdayOf(day))
}

// HabitEntry is the completion record of one habit for one calendar day
type HabitEntry struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habit_id"`
	Day       string    `json:"day"` // YYYY-MM-DD format
	Completed bool      `json:"completed"`
	Note      *string   `json:"note,omitempty"`
	Rating    *int      `json:"rating,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HabitInput is the caller-supplied definition of a habit
type HabitInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Color       string   `json:"color,omitempty"`
	Frequency   string   `json:"frequency"`
	DaysOfWeek  []string `json:"days_of_week"`
	Variant     string   `json:"variant,omitempty"`
}

// EntryInput is the caller-supplied completion for one day
type EntryInput struct {
	HabitID   string  `json:"habit_id"`
	Date      string  `json:"date"` // YYYY-MM-DD format
	Completed bool    `json:"completed"`
	Note      *string `json:"note,omitempty"`
	Rating    *int    `json:"rating,omitempty"`
}

// EntryPatch lists the mutable fields of an entry. Nil fields are left unchanged.
type EntryPatch struct {
	Completed *bool   `json:"completed,omitempty"`
	Note      *string `json:"note,omitempty"`
	Rating    *int    `json:"rating,omitempty"`
	// ClearRating removes a stored rating
	ClearRating bool `json:"clear_rating,omitempty"`
}
