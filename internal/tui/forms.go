package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitgrid/internal/constants"
	"github.com/julianstephens/habitgrid/internal/models"
)

type HabitFormModel struct {
	Name    string
	Days    []string
	Variant string
	Color   string
}

type NoteFormModel struct {
	HabitID string
	Day     string
	Text    string
}

type RatingFormModel struct {
	HabitID string
	Day     string
	Rating  int
}

type DeleteFormModel struct {
	HabitID string
	Name    string
	Confirm bool
}

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// NewHabitForm creates a new form for adding habits
func NewHabitForm(fm *HabitFormModel) *huh.Form {
	dayOptions := make([]huh.Option[string], 0, len(models.AllWeekdays))
	for _, d := range models.AllWeekdays {
		name := string(d)
		dayOptions = append(dayOptions, huh.NewOption(strings.ToUpper(name[:1])+name[1:], name).Selected(contains(fm.Days, name)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewMultiSelect[string]().
				Title("Days").
				Options(dayOptions...).
				Value(&fm.Days).
				Validate(func(days []string) error {
					if len(days) == 0 {
						return fmt.Errorf("pick at least one day")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Entry type").
				Options(
					huh.NewOption("Checkbox", string(models.VariantStandard)),
					huh.NewOption("Learning log (note)", string(models.VariantLearningLog)),
					huh.NewOption("Day rating (0-10)", string(models.VariantDayRating)),
				).
				Value(&fm.Variant),
			huh.NewInput().
				Title("Color").
				Description("Optional, #RRGGBB").
				Value(&fm.Color).
				Validate(func(s string) error {
					if s != "" && !colorPattern.MatchString(s) {
						return fmt.Errorf("color must look like #RRGGBB")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewNoteForm creates a form for the learning log note of one day
func NewNoteForm(fm *NoteFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("What did you learn on " + fm.Day + "?").
				Value(&fm.Text),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewRatingForm creates a form for the rating of one day
func NewRatingForm(fm *RatingFormModel) *huh.Form {
	options := make([]huh.Option[int], 0, constants.MaxRating-constants.MinRating+1)
	for r := constants.MinRating; r <= constants.MaxRating; r++ {
		options = append(options, huh.NewOption(fmt.Sprintf("%d", r), r))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Rate " + fm.Day).
				Options(options...).
				Value(&fm.Rating),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewDeleteForm asks for confirmation before deleting a habit
func NewDeleteForm(fm *DeleteFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q and all of its entries?", fm.Name)).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&fm.Confirm),
		),
	).WithTheme(huh.ThemeDracula())
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
