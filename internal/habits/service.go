// Package habits implements habit scheduling, completion recording and statistics
// on top of a storage.Provider.
package habits

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/julianstephens/habitgrid/internal/constants"
	"github.com/julianstephens/habitgrid/internal/errors"
	"github.com/julianstephens/habitgrid/internal/logger"
	"github.com/julianstephens/habitgrid/internal/models"
	"github.com/julianstephens/habitgrid/internal/storage"
	"github.com/julianstephens/habitgrid/internal/validation"
)

// Service validates and records habits and their completions on top of a storage Provider
type Service struct {
	store     storage.Provider
	validator *validation.Validator
	policy    models.StreakPolicy
	now       func() time.Time
	loc       *time.Location
	newID     func() string
	log       *log.Logger
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone calendar days are interpreted in
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithStreakPolicy selects how streaks are counted
func WithStreakPolicy(p models.StreakPolicy) Option {
	return func(s *Service) {
		if p.IsValid() {
			s.policy = p
		}
	}
}

// WithLogger replaces the component logger
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithIDGenerator overrides uuid generation
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// NewService returns a Service using the calendar streak policy and the local time zone unless overridden
func NewService(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store:  store,
		policy: models.StreakByCalendar,
		now:    time.Now,
		loc:    time.Local,
		newID:  uuid.NewString,
		log:    logger.With("component", "habits"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.validator = validation.New(validation.WithClock(s.now), validation.WithLocation(s.loc))
	return s
}

// Today returns midnight of the current day in the service location
func (s *Service) Today() time.Time {
	return s.validator.Today()
}

// Location returns the time zone calendar days are interpreted in
func (s *Service) Location() *time.Location {
	return s.loc
}

// StreakPolicy returns the active streak policy
func (s *Service) StreakPolicy() models.StreakPolicy {
	return s.policy
}

func (s *Service) storageErr(op string, err error) error {
	s.log.Error("storage operation failed", "op", op, "error", err)
	return errors.Storage(op, err)
}

func (s *Service) loadHabit(ctx context.Context, id string) (models.Habit, error) {
	if strings.TrimSpace(id) == "" {
		return models.Habit{}, errors.New(errors.KindMissingHabitID, "habit id is required")
	}
	h, err := s.store.GetHabit(ctx, id)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return models.Habit{}, errors.Newf(errors.KindHabitNotFound, "habit %s not found", id)
		}
		return models.Habit{}, s.storageErr("get habit", err)
	}
	return h, nil
}

func (s *Service) buildHabit(input models.HabitInput) models.Habit {
	variant := models.Variant(input.Variant)
	if variant == "" {
		variant = models.VariantStandard
	}
	return models.Habit{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Color:       input.Color,
		Frequency:   models.Frequency(input.Frequency),
		DaysOfWeek:  validation.DaySet(input.DaysOfWeek),
		Variant:     variant,
	}
}

// InputFromHabit returns the editable definition of an existing habit
func InputFromHabit(h models.Habit) models.HabitInput {
	return models.HabitInput{
		Name:        h.Name,
		Description: h.Description,
		Color:       h.Color,
		Frequency:   string(h.Frequency),
		DaysOfWeek:  h.DaysOfWeek.Strings(),
		Variant:     string(h.Variant),
	}
}

// CreateHabit validates and stores a new habit for ownerID
func (s *Service) CreateHabit(ctx context.Context, ownerID string, input models.HabitInput) (models.Habit, error) {
	if err := s.validator.ValidateHabit(input); err != nil {
		return models.Habit{}, err
	}

	h := s.buildHabit(input)
	now := s.now()
	h.ID = s.newID()
	h.OwnerID = ownerID
	h.CreatedAt = now
	h.UpdatedAt = now

	if err := s.store.AddHabit(ctx, h); err != nil {
		return models.Habit{}, s.storageErr("add habit", err)
	}

	s.log.Debug("habit created", "habit_id", h.ID, "owner", ownerID, "variant", h.Variant)
	return h, nil
}

// GetHabit returns a habit by id
func (s *Service) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	return s.loadHabit(ctx, id)
}

// ListHabits returns the habits of ownerID, system-defined habits first
func (s *Service) ListHabits(ctx context.Context, ownerID string) ([]models.Habit, error) {
	habits, err := s.store.GetHabitsForOwner(ctx, ownerID)
	if err != nil {
		return nil, s.storageErr("list habits", err)
	}
	return habits, nil
}

// UpdateHabit replaces the definition of a habit. System-defined habits keep their variant.
func (s *Service) UpdateHabit(ctx context.Context, id string, input models.HabitInput) (models.Habit, error) {
	if err := s.validator.ValidateHabit(input); err != nil {
		return models.Habit{}, err
	}

	existing, err := s.loadHabit(ctx, id)
	if err != nil {
		return models.Habit{}, err
	}

	updated := s.buildHabit(input)
	updated.ID = existing.ID
	updated.OwnerID = existing.OwnerID
	updated.IsSystemDefined = existing.IsSystemDefined
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.now()
	if input.Variant == "" {
		updated.Variant = existing.Variant
	}
	if existing.IsSystemDefined && updated.Variant != existing.Variant {
		return models.Habit{}, errors.Newf(errors.KindSystemDefinedHabit, "cannot change the variant of system habit %q", existing.Name)
	}

	if err := s.store.UpdateHabit(ctx, updated); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return models.Habit{}, errors.Newf(errors.KindHabitNotFound, "habit %s not found", id)
		}
		return models.Habit{}, s.storageErr("update habit", err)
	}

	s.log.Debug("habit updated", "habit_id", id)
	return updated, nil
}

// DeleteHabit removes a habit and all of its entries atomically
func (s *Service) DeleteHabit(ctx context.Context, id string) error {
	h, err := s.loadHabit(ctx, id)
	if err != nil {
		return err
	}
	if h.IsSystemDefined {
		return errors.Newf(errors.KindSystemDefinedHabit, "habit %q is built in and cannot be deleted", h.Name)
	}

	if err := s.store.DeleteHabit(ctx, id); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return errors.Newf(errors.KindHabitNotFound, "habit %s not found", id)
		}
		return s.storageErr("delete habit", err)
	}

	s.log.Debug("habit deleted", "habit_id", id)
	return nil
}

// RecordCompletion stores the completion of a habit for one calendar day.
// At most one entry exists per habit and day.
func (s *Service) RecordCompletion(ctx context.Context, input models.EntryInput) (models.HabitEntry, error) {
	if err := s.validator.ValidateHabitEntry(input); err != nil {
		return models.HabitEntry{}, err
	}
	day, err := s.validator.ParseDay(input.Date)
	if err != nil {
		return models.HabitEntry{}, err
	}

	habit, err := s.loadHabit(ctx, input.HabitID)
	if err != nil {
		return models.HabitEntry{}, err
	}

	weekday := models.WeekdayOf(day)
	if !habit.DaysOfWeek.Contains(weekday) {
		err := errors.Newf(errors.KindNotScheduled, "habit %s is not scheduled on %s", habit.Name, weekday)
		err.Weekday = string(weekday)
		return models.HabitEntry{}, err
	}

	now := s.now()
	entry := models.HabitEntry{
		ID:        s.newID(),
		HabitID:   habit.ID,
		Day:       day.Format(constants.DateFormat),
		Completed: input.Completed,
		Note:      input.Note,
		Rating:    input.Rating,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyVariant(habit.Variant, &entry)

	if err := s.store.AddHabitEntry(ctx, entry); err != nil {
		switch {
		case stderrors.Is(err, storage.ErrDuplicate):
			return models.HabitEntry{}, errors.Newf(errors.KindDuplicateEntry, "habit %s already has an entry for %s", habit.ID, entry.Day)
		case stderrors.Is(err, storage.ErrReferenceMissing):
			return models.HabitEntry{}, errors.Newf(errors.KindHabitNotFound, "habit %s not found", habit.ID)
		}
		return models.HabitEntry{}, s.storageErr("add habit entry", err)
	}

	s.log.Debug("completion recorded", "habit_id", habit.ID, "day", entry.Day, "completed", entry.Completed)
	return entry, nil
}

// GetEntry returns a single completion entry
func (s *Service) GetEntry(ctx context.Context, id string) (models.HabitEntry, error) {
	e, err := s.store.GetHabitEntry(ctx, id)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return models.HabitEntry{}, errors.Newf(errors.KindEntryNotFound, "entry %s not found", id)
		}
		return models.HabitEntry{}, s.storageErr("get habit entry", err)
	}
	return e, nil
}

// Entries returns the entries of a habit between from and to inclusive, newest first.
// Empty bounds are open.
func (s *Service) Entries(ctx context.Context, habitID, from, to string) ([]models.HabitEntry, error) {
	if _, err := s.loadHabit(ctx, habitID); err != nil {
		return nil, err
	}
	entries, err := s.store.GetHabitEntriesForHabit(ctx, habitID, from, to)
	if err != nil {
		return nil, s.storageErr("list habit entries", err)
	}
	return entries, nil
}

// CountEntries returns how many entries are stored for a habit
func (s *Service) CountEntries(ctx context.Context, habitID string) (int, error) {
	habit, err := s.loadHabit(ctx, habitID)
	if err != nil {
		return 0, err
	}
	n, err := s.store.CountHabitEntries(ctx, habit.ID)
	if err != nil {
		return 0, s.storageErr("count habit entries", err)
	}
	return n, nil
}

// UpdateCompletion edits an entry in place. The habit and day of an entry never change.
func (s *Service) UpdateCompletion(ctx context.Context, entryID string, patch models.EntryPatch) (models.HabitEntry, error) {
	if err := s.validator.ValidateRating(patch.Rating); err != nil {
		return models.HabitEntry{}, err
	}

	entry, err := s.GetEntry(ctx, entryID)
	if err != nil {
		return models.HabitEntry{}, err
	}
	habit, err := s.loadHabit(ctx, entry.HabitID)
	if err != nil {
		return models.HabitEntry{}, err
	}

	if patch.Completed != nil {
		entry.Completed = *patch.Completed
	}
	if patch.Note != nil {
		entry.Note = patch.Note
	}
	if patch.Rating != nil {
		entry.Rating = patch.Rating
	} else if patch.ClearRating {
		entry.Rating = nil
	}
	applyVariant(habit.Variant, &entry)
	entry.UpdatedAt = s.now()

	if err := s.store.UpdateHabitEntry(ctx, entry); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return models.HabitEntry{}, errors.Newf(errors.KindEntryNotFound, "entry %s not found", entryID)
		}
		return models.HabitEntry{}, s.storageErr("update habit entry", err)
	}

	s.log.Debug("completion updated", "entry_id", entry.ID, "completed", entry.Completed)
	return entry, nil
}

// MarkDay sets the completed flag of a habit for a day, creating the entry when missing
func (s *Service) MarkDay(ctx context.Context, habitID, date string, completed bool) (models.HabitEntry, error) {
	entry, err := s.RecordCompletion(ctx, models.EntryInput{HabitID: habitID, Date: date, Completed: completed})
	if err == nil || !stderrors.Is(err, errors.ErrDuplicateEntry) {
		return entry, err
	}

	existing, err := s.EntryForDay(ctx, habitID, date)
	if err != nil {
		return models.HabitEntry{}, err
	}
	return s.UpdateCompletion(ctx, existing.ID, models.EntryPatch{Completed: &completed})
}

// SaveEntry records input, or merges its note and rating into the entry that already
// exists for that day. An existing entry is only ever marked done, never undone.
func (s *Service) SaveEntry(ctx context.Context, input models.EntryInput) (models.HabitEntry, error) {
	entry, err := s.RecordCompletion(ctx, input)
	if err == nil || !stderrors.Is(err, errors.ErrDuplicateEntry) {
		return entry, err
	}

	existing, err := s.EntryForDay(ctx, input.HabitID, input.Date)
	if err != nil {
		return models.HabitEntry{}, err
	}
	patch := models.EntryPatch{Note: input.Note, Rating: input.Rating}
	if input.Completed {
		patch.Completed = &input.Completed
	}
	return s.UpdateCompletion(ctx, existing.ID, patch)
}

// EntryForDay returns the entry of a habit for the calendar day named by date
func (s *Service) EntryForDay(ctx context.Context, habitID, date string) (models.HabitEntry, error) {
	day, err := s.validator.ParseDay(date)
	if err != nil {
		return models.HabitEntry{}, err
	}
	key := day.Format(constants.DateFormat)
	e, err := s.store.GetHabitEntryForDay(ctx, habitID, key)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return models.HabitEntry{}, errors.Newf(errors.KindEntryNotFound, "no entry for %s", key)
		}
		return models.HabitEntry{}, s.storageErr("get habit entry", err)
	}
	return e, nil
}

// GetHabitStats computes completion metrics for a habit under the configured streak policy
func (s *Service) GetHabitStats(ctx context.Context, habitID string) (models.HabitStats, error) {
	habit, err := s.loadHabit(ctx, habitID)
	if err != nil {
		return models.HabitStats{}, err
	}
	entries, err := s.store.GetHabitEntriesForHabit(ctx, habitID, "", "")
	if err != nil {
		return models.HabitStats{}, s.storageErr("list habit entries", err)
	}
	return ComputeStats(habit, entries, s.policy, s.Today()), nil
}

// WeekView projects the Monday-started week containing date. An empty date means today.
func (s *Service) WeekView(ctx context.Context, habitID, date string) (models.WeekView, error) {
	day := s.Today()
	if strings.TrimSpace(date) != "" {
		parsed, err := s.validator.ParseDay(date)
		if err != nil {
			return models.WeekView{}, err
		}
		day = parsed
	}

	habit, err := s.loadHabit(ctx, habitID)
	if err != nil {
		return models.WeekView{}, err
	}

	start := WeekStart(day)
	end := start.AddDate(0, 0, constants.WeekLength-1)
	entries, err := s.store.GetHabitEntriesForHabit(ctx, habitID,
		start.Format(constants.DateFormat), end.Format(constants.DateFormat))
	if err != nil {
		return models.WeekView{}, s.storageErr("list habit entries", err)
	}

	return ProjectWeek(habit, entries, day, s.Today()), nil
}

// EnsureDefaultHabits provisions the system-defined habits ownerID is missing.
// It returns the habits that were created.
func (s *Service) EnsureDefaultHabits(ctx context.Context, ownerID string) ([]models.Habit, error) {
	existing, err := s.ListHabits(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	have := make(map[models.Variant]bool)
	for _, h := range existing {
		if h.IsSystemDefined {
			have[h.Variant] = true
		}
	}

	var created []models.Habit
	for _, input := range systemHabits {
		variant := models.Variant(input.Variant)
		if have[variant] {
			continue
		}
		h := s.buildHabit(input)
		now := s.now()
		h.ID = s.newID()
		h.OwnerID = ownerID
		h.IsSystemDefined = true
		h.CreatedAt = now
		h.UpdatedAt = now

		if err := s.store.AddHabit(ctx, h); err != nil {
			// another request provisioned it first
			if stderrors.Is(err, storage.ErrDuplicate) {
				continue
			}
			return created, s.storageErr("add system habit", err)
		}
		created = append(created, h)
	}

	if len(created) > 0 {
		s.log.Info("provisioned system habits", "owner", ownerID, "count", len(created))
	}
	return created, nil
}
