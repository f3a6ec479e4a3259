package habits

import "github.com/julianstephens/habitgrid/internal/models"

// systemHabits are provisioned for every user and cannot be deleted
var systemHabits = []models.HabitInput{
	{
		Name:        "Learning log",
		Description: "What did you learn today?",
		Color:       "#4F86C6",
		Frequency:   string(models.FrequencyDaily),
		DaysOfWeek:  models.NewDaySet(models.AllWeekdays...).Strings(),
		Variant:     string(models.VariantLearningLog),
	},
	{
		Name:        "Day rating",
		Description: "How was your day, from 0 to 10?",
		Color:       "#E0A030",
		Frequency:   string(models.FrequencyDaily),
		DaysOfWeek:  models.NewDaySet(models.AllWeekdays...).Strings(),
		Variant:     string(models.VariantDayRating),
	},
}

// SystemHabits returns the definitions of the built-in habits
func SystemHabits() []models.HabitInput {
	out := make([]models.HabitInput, len(systemHabits))
	copy(out, systemHabits)
	return out
}
