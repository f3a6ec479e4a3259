package habits

import (
	"strings"

	"github.com/julianstephens/habitgrid/internal/models"
)

// AffordanceFor returns the input control a day cell offers for the variant
func AffordanceFor(v models.Variant) models.Affordance {
	switch v {
	case models.VariantLearningLog:
		return models.AffordanceNote
	case models.VariantDayRating:
		return models.AffordanceRating
	default:
		return models.AffordanceCheckbox
	}
}

// normalizeNote drops notes that are empty after trimming
func normalizeNote(note *string) *string {
	if note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// applyVariant adjusts an entry according to the habit's variant.
// A learning log with a note and a day rating with a rating count as completed.
func applyVariant(v models.Variant, entry *models.HabitEntry) {
	entry.Note = normalizeNote(entry.Note)
	switch v {
	case models.VariantLearningLog:
		if entry.Note != nil {
			entry.Completed = true
		}
	case models.VariantDayRating:
		if entry.Rating != nil {
			entry.Completed = true
		}
	}
}
