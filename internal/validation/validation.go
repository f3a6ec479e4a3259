package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julianstephens/habitgrid/internal/constants"
	"github.com/julianstephens/habitgrid/internal/errors"
	"github.com/julianstephens/habitgrid/internal/models"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Validator rejects malformed habit definitions and completion entries before they reach storage.
// It holds no state besides the clock and location used to decide what "today" is.
type Validator struct {
	now func() time.Time
	loc *time.Location
}

// Option configures a Validator
type Option func(*Validator)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// WithLocation sets the time zone calendar days are interpreted in
func WithLocation(loc *time.Location) Option {
	return func(v *Validator) {
		if loc != nil {
			v.loc = loc
		}
	}
}

// New creates a new Validator
func New(opts ...Option) *Validator {
	v := &Validator{now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Location returns the time zone used for calendar days
func (v *Validator) Location() *time.Location {
	return v.loc
}

// Today returns midnight of the current day in the validator's location
func (v *Validator) Today() time.Time {
	now := v.now().In(v.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, v.loc)
}

// ValidateHabit checks a habit definition and returns the first failure found.
func (v *Validator) ValidateHabit(input models.HabitInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return errors.New(errors.KindEmptyName, "habit name cannot be empty")
	}
	if n := utf8.RuneCountInString(name); n > constants.MaxHabitNameLength {
		return errors.Newf(errors.KindNameTooLong, "habit name is %d characters, maximum is %d", n, constants.MaxHabitNameLength)
	}

	if !models.Frequency(input.Frequency).IsValid() {
		return errors.Newf(errors.KindInvalidFrequency, "invalid frequency %q (expected daily, weekly or monthly)", input.Frequency)
	}

	if len(input.DaysOfWeek) == 0 {
		return errors.New(errors.KindEmptyDaySet, "days of week cannot be empty")
	}
	var invalid []string
	for _, d := range input.DaysOfWeek {
		if _, ok := models.ParseWeekday(d); !ok {
			invalid = append(invalid, d)
		}
	}
	if len(invalid) > 0 {
		return &errors.Error{
			Kind:    errors.KindInvalidDayName,
			Message: fmt.Sprintf("invalid day names: %s", strings.Join(quoteAll(invalid), ", ")),
			Invalid: invalid,
		}
	}

	if input.Color != "" && !colorPattern.MatchString(input.Color) {
		return errors.Newf(errors.KindInvalidColor, "invalid color %q (expected #RRGGBB)", input.Color)
	}

	if input.Variant != "" && !models.Variant(input.Variant).IsValid() {
		return errors.Newf(errors.KindInvalidVariant, "invalid variant %q (expected standard, learning-log or day-rating)", input.Variant)
	}

	return nil
}

// DaySet converts validated day names into a canonical set
func DaySet(days []string) models.DaySet {
	parsed := make([]models.Weekday, 0, len(days))
	for _, d := range days {
		if w, ok := models.ParseWeekday(d); ok {
			parsed = append(parsed, w)
		}
	}
	return models.NewDaySet(parsed...)
}

// ValidateHabitEntry checks the shape of a completion entry. Whether the day is scheduled
// depends on the habit record and is checked by the completion store.
func (v *Validator) ValidateHabitEntry(input models.EntryInput) error {
	if strings.TrimSpace(input.HabitID) == "" {
		return errors.New(errors.KindMissingHabitID, "habit id is required")
	}
	day, err := v.ParseDay(input.Date)
	if err != nil {
		return err
	}
	if !day.Before(v.Today().AddDate(0, 0, 1)) {
		return errors.Newf(errors.KindFutureDate, "date %s is in the future", day.Format(constants.DateFormat))
	}
	return v.ValidateRating(input.Rating)
}

// ValidateRating checks an optional 0-10 rating
func (v *Validator) ValidateRating(rating *int) error {
	if rating == nil {
		return nil
	}
	if *rating < constants.MinRating || *rating > constants.MaxRating {
		return errors.Newf(errors.KindRatingOutOfRange, "rating %d is out of range [%d, %d]", *rating, constants.MinRating, constants.MaxRating)
	}
	return nil
}

// ParseDay parses a calendar day (YYYY-MM-DD) or an RFC3339 timestamp and returns
// midnight of that day in the validator's location. Time of day is discarded.
func (v *Validator) ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New(errors.KindInvalidDate, "date is required")
	}
	if t, err := time.ParseInLocation(constants.DateFormat, s, v.loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.Newf(errors.KindInvalidDate, "invalid date %q (expected YYYY-MM-DD)", s)
	}
	t = t.In(v.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, v.loc), nil
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, s := range values {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}
