package models

// StreakPolicy decides what breaks a streak
type StreakPolicy string

const (
	// StreakByEntries counts consecutive stored entries only
	StreakByEntries StreakPolicy = "entries"
	// StreakByCalendar also treats a due day without an entry as a miss
	StreakByCalendar StreakPolicy = "calendar"
)

func (p StreakPolicy) IsValid() bool {
	return p == StreakByEntries || p == StreakByCalendar
}

// HabitStats holds metrics derived from a habit's entry history
type HabitStats struct {
	HabitID          string  `json:"habit_id"`
	TotalEntries     int     `json:"total_entries"`
	CompletedEntries int     `json:"completed_entries"`
	CompletionRate   float64 `json:"completion_rate"` // percent, 0 when there are no entries
	CurrentStreak    int     `json:"current_streak"`
	LongestStreak    int     `json:"longest_streak"`
	LastCompletedDay string  `json:"last_completed_day,omitempty"`
}

// Affordance is the input control a day cell offers
type Affordance string

const (
	AffordanceCheckbox Affordance = "checkbox"
	AffordanceNote     Affordance = "note"
	AffordanceRating   Affordance = "rating"
)

// DayView is one cell of the weekly grid
type DayView struct {
	Day        string     `json:"day"`
	Weekday    Weekday    `json:"weekday"`
	Scheduled  bool       `json:"scheduled"`
	Future     bool       `json:"future"`
	Editable   bool       `json:"editable"`
	Affordance Affordance `json:"affordance"`
	EntryID    string     `json:"entry_id,omitempty"`
	HasEntry   bool       `json:"has_entry"`
	Completed  bool       `json:"completed"`
	Note       *string    `json:"note,omitempty"`
	Rating     *int       `json:"rating,omitempty"`
}

// WeekView is the weekly grid of one habit
type WeekView struct {
	Habit Habit     `json:"habit"`
	Start string    `json:"start"`
	End   string    `json:"end"`
	Days  []DayView `json:"days"`
}
