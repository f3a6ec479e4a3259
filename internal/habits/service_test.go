package habits

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitgrid/internal/errors"
	"github.com/julianstephens/habitgrid/internal/models"
	"github.com/julianstephens/habitgrid/internal/storage/sqlite"
)

// Wednesday 2024-01-10, mid afternoon
var fixedNow = time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)

func setupService(t *testing.T, opts ...Option) (*Service, *sqlite.Store) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "habitgrid.db"))
	require.NoError(t, store.Init(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	opts = append([]Option{
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
	}, opts...)
	return NewService(store, opts...), store
}

func mwfInput() models.HabitInput {
	return models.HabitInput{
		Name:       "Run",
		Frequency:  "weekly",
		DaysOfWeek: []string{"monday", "wednesday", "friday"},
	}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool     { return &v }

func TestMondayWednesdayFridayScenario(t *testing.T) {
	ctx := context.Background()
	svc, store := setupService(t)

	habit, err := svc.CreateHabit(ctx, "alice", mwfInput())
	require.NoError(t, err)

	// Tuesday is not scheduled
	_, err = svc.RecordCompletion(ctx, models.EntryInput{HabitID: habit.ID, Date: "2024-01-09", Completed: true})
	require.ErrorIs(t, err, errors.ErrNotScheduled)
	var kindErr *errors.Error
	require.ErrorAs(t, err, &kindErr)
	assert.Equal(t, "tuesday", kindErr.Weekday)
	assert.Equal(t, "habit Run is not scheduled on tuesday", kindErr.Message)

	count, err := store.CountHabitEntries(ctx, habit.ID)
	require.NoError(t, err)
	assert.Zero(t, count, "rejected completion must not create a row")

	// Same Monday twice
	_, err = svc.RecordCompletion(ctx, models.EntryInput{HabitID: habit.ID, Date: "2024-01-08", Completed: true})
	require.NoError(t, err)
	_, err = svc.RecordCompletion(ctx, models.EntryInput{HabitID: habit.ID, Date: "2024-01-08", Completed: true})
	require.ErrorIs(t, err, errors.ErrDuplicateEntry)

	count, err = store.CountHabitEntries(ctx, habit.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stats, err := svc.GetHabitStats(ctx, habit.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalEntries)
	assert.Equal(t, 1, stats.CompletedEntries)
	assert.Equal(t, float64(100), stats.CompletionRate)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, "2024-01-08", stats.LastCompletedDay)
}

func TestRecordCompletionValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	daily, err := svc.CreateHabit(ctx, "alice", models.HabitInput{
		Name:       "Journal",
		Frequency:  "daily",
		DaysOfWeek: []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"},
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   models.EntryInput
		wantErr error
	}{
		{"tomorrow", models.EntryInput{HabitID: daily.ID, Date: "2024-01-11"}, errors.ErrFutureDate},
		{"rating above range", models.EntryInput{HabitID: daily.ID, Date: "2024-01-01", Rating: intPtr(11)}, errors.ErrRatingOutOfRange},
		{"rating below range", models.EntryInput{HabitID: daily.ID, Date: "2024-01-02", Rating: intPtr(-1)}, errors.ErrRatingOutOfRange},
		{"missing habit id", models.EntryInput{Date: "2024-01-03"}, errors.ErrMissingHabitID},
		{"malformed date", models.EntryInput{HabitID: daily.ID, Date: "2024-02-30"}, errors.ErrInvalidDate},
		{"unknown habit", models.EntryInput{HabitID: "ghost", Date: "2024-01-03"}, errors.ErrHabitNotFound},
		{"rating zero", models.EntryInput{HabitID: daily.ID, Date: "2024-01-08", Rating: intPtr(0)}, nil},
		{"rating ten", models.EntryInput{HabitID: daily.ID, Date: "2024-01-09", Rating: intPtr(10)}, nil},
		{"today", models.EntryInput{HabitID: daily.ID, Date: "2024-01-10", Completed: true}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordCompletion(ctx, tt.input)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRecordCompletionTruncatesTimestamp(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	habit, err := svc.CreateHabit(ctx, "alice", mwfInput())
	require.NoError(t, err)

	entry, err := svc.RecordCompletion(ctx, models.EntryInput{HabitID: habit.ID, Date: "2024-01-08T21:45:00Z", Completed: true})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-08", entry.Day)
}

func TestConcurrentRecordCompletion(t *testing.T) {
	ctx := context.Background()
	svc, store := setupService(t)

	habit, err := svc.CreateHabit(ctx, "alice", mwfInput())
	require.NoError(t, err)

	const callers = 6
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.RecordCompletion(ctx, models.EntryInput{HabitID: habit.ID, Date: "2024-01-08", Completed: true})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, errors.ErrDuplicateEntry)
	}
	assert.Equal(t, 1, ok)

	count, err := store.CountHabitEntries(ctx, habit.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestVariantRules(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	created, err := svc.EnsureDefaultHabits(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, created, 2)

	var learning, rating models.Habit
	for _, h := range created {
		assert.True(t, h.IsSystemDefined)
		switch h.Variant {
		case models.VariantLearningLog:
			learning = h
		case models.VariantDayRating:
			rating = h
		}
	}
	require.NotEmpty(t, learning.ID)
	require.NotEmpty(t, rating.ID)

	entry, err := svc.RecordCompletion(ctx, models.EntryInput{HabitID: learning.ID, Date: "2024-01-09", Note: strPtr("  goroutines leak when channels block ")})
	require.NoError(t, err)
	assert.True(t, entry.Completed, "a learning log note completes the day")
	require.NotNil(t, entry.Note)
	assert.Equal(t, "goroutines leak when channels block", *entry.Note)

	entry, err = svc.RecordCompletion(ctx, models.EntryInput{HabitID: learning.ID, Date: "2024-01-08", Note: strPtr("   ")})
	require.NoError(t, err)
	assert.False(t, entry.Completed)
	assert.Nil(t, entry.Note)

	entry, err = svc.RecordCompletion(ctx, models.EntryInput{HabitID: rating.ID, Date: "2024-01-09", Rating: intPtr(0)})
	require.NoError(t, err)
	assert.True(t, entry.Completed, "a rating completes the day")

	again, err := svc.EnsureDefaultHabits(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, again)

	habits, err := svc.ListHabits(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, habits, 2)
}

func TestDeleteHabit(t *testing.T) {
	ctx := context.Background()
	svc, store := setupService(t)

	habit, err := svc.CreateHabit(ctx, "alice", mwfInput())
	require.NoError(t, err)
	for _, day := range []string{"2024-01-03", "2024-01-05", "2024-01-08", "2024-01-10"} {
		_, err := svc.RecordCompletion(ctx, models.EntryInput{HabitID: habit.ID, Date: day, Completed: true})
		require.NoError(t, err)
	}

	n, err := svc.CountEntries(ctx, habit.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	require.NoError(t, svc.DeleteHabit(ctx, habit.ID))

	_, err = svc.CountEntries(ctx, habit.ID)
	assert.ErrorIs(t, err, errors.ErrHabitNotFound)

	count, err := store.CountHabitEntries(ctx, habit.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = svc.GetHabit(ctx, habit.ID)
	assert.ErrorIs(t, err, errors.ErrHabitNotFound)
	assert.ErrorIs(t, svc.DeleteHabit(ctx, habit.ID), errors.ErrHabitNotFound)
}

func TestDeleteSystemHabitRefused(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	created, err := svc.EnsureDefaultHabits(ctx, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, created)

	err = svc.DeleteHabit(ctx, created[0].ID)
	assert.ErrorIs(t, err, errors.ErrSystemDefinedHabit)

	_, err = svc.GetHabit(ctx, created[0].ID)
	assert.NoError(t, err)
}

func TestCreateAndUpdateHabit(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.CreateHabit(ctx, "alice", models.HabitInput{Name: "Bad", Frequency: "weekly", DaysOfWeek: []string{"funday"}})
	assert.ErrorIs(t, err, errors.ErrInvalidDayName)

	habit, err := svc.CreateHabit(ctx, "alice", models.HabitInput{
		Name:       "  Stretch ",
		Frequency:  "daily",
		DaysOfWeek: []string{"Friday", " monday", "friday"},
		Color:      "#A1B2C3",
	})
	require.NoError(t, err)
	assert.Equal(t, "Stretch", habit.Name)
	assert.Equal(t, models.DaySet{models.Monday, models.Friday}, habit.DaysOfWeek)
	assert.Equal(t, models.VariantStandard, habit.Variant)

	input := InputFromHabit(habit)
	input.DaysOfWeek = []string{"sunday"}
	updated, err := svc.UpdateHabit(ctx, habit.ID, input)
	require.NoError(t, err)
	assert.Equal(t, models.DaySet{models.Sunday}, updated.DaysOfWeek)

	got, err := svc.GetHabit(ctx, habit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DaySet{models.Sunday}, got.DaysOfWeek)

	input.Color = "red"
	_, err = svc.UpdateHabit(ctx, habit.ID, input)
	assert.ErrorIs(t, err, errors.ErrInvalidColor)

	_, err = svc.UpdateHabit(ctx, "ghost", InputFromHabit(habit))
	assert.ErrorIs(t, err, errors.ErrHabitNotFound)
}

func TestUpdateCompletion(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	habit, err := svc.CreateHabit(ctx, "alice", mwfInput())
	require.NoError(t, err)
	entry, err := svc.RecordCompletion(ctx, models.EntryInput{HabitID: habit.ID, Date: "2024-01-08", Completed: true, Rating: intPtr(4)})
	require.NoError(t, err)

	updated, err := svc.UpdateCompletion(ctx, entry.ID, models.EntryPatch{Completed: boolPtr(false), Note: strPtr("rained")})
	require.NoError(t, err)
	assert.False(t, updated.Completed)
	require.NotNil(t, updated.Note)
	assert.Equal(t, "rained", *updated.Note)
	require.NotNil(t, updated.Rating)
	assert.Equal(t, 4, *updated.Rating)
	assert.Equal(t, entry.Day, updated.Day)

	updated, err = svc.UpdateCompletion(ctx, entry.ID, models.EntryPatch{ClearRating: true})
	require.NoError(t, err)
	assert.Nil(t, updated.Rating)

	_, err = svc.UpdateCompletion(ctx, entry.ID, models.EntryPatch{Rating: intPtr(11)})
	assert.ErrorIs(t, err, errors.ErrRatingOutOfRange)

	_, err = svc.UpdateCompletion(ctx, "ghost", models.EntryPatch{Completed: boolPtr(true)})
	assert.ErrorIs(t, err, errors.ErrEntryNotFound)
}

func TestMarkDayTogglesExistingEntry(t *testing.T) {
	ctx := context.Background()
	svc, store := setupService(t)

	habit, err := svc.CreateHabit(ctx, "alice", mwfInput())
	require.NoError(t, err)

	first, err := svc.MarkDay(ctx, habit.ID, "2024-01-08", true)
	require.NoError(t, err)
	assert.True(t, first.Completed)

	second, err := svc.MarkDay(ctx, habit.ID, "2024-01-08", false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.Completed)

	count, err := store.CountHabitEntries(ctx, habit.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = svc.MarkDay(ctx, habit.ID, "2024-01-09", true)
	assert.ErrorIs(t, err, errors.ErrNotScheduled)
}

func TestSaveEntryUpdatesExistingDay(t *testing.T) {
	ctx := context.Background()
	svc, store := setupService(t)

	created, err := svc.EnsureDefaultHabits(ctx, "alice")
	require.NoError(t, err)
	var rating models.Habit
	for _, h := range created {
		if h.Variant == models.VariantDayRating {
			rating = h
		}
	}
	require.NotEmpty(t, rating.ID)

	first, err := svc.SaveEntry(ctx, models.EntryInput{HabitID: rating.ID, Date: "2024-01-10", Rating: intPtr(4)})
	require.NoError(t, err)
	assert.True(t, first.Completed)

	second, err := svc.SaveEntry(ctx, models.EntryInput{HabitID: rating.ID, Date: "2024-01-10T08:00:00Z", Rating: intPtr(9)})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, second.Rating)
	assert.Equal(t, 9, *second.Rating)

	count, err := store.CountHabitEntries(ctx, rating.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	found, err := svc.EntryForDay(ctx, rating.ID, "2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	_, err = svc.EntryForDay(ctx, rating.ID, "2024-01-09")
	assert.ErrorIs(t, err, errors.ErrEntryNotFound)
}

func TestGetHabitStatsEmpty(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	habit, err := svc.CreateHabit(ctx, "alice", mwfInput())
	require.NoError(t, err)

	stats, err := svc.GetHabitStats(ctx, habit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.HabitStats{HabitID: habit.ID}, stats)
}

func TestWeekView(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	habit, err := svc.CreateHabit(ctx, "alice", mwfInput())
	require.NoError(t, err)
	_, err = svc.RecordCompletion(ctx, models.EntryInput{HabitID: habit.ID, Date: "2024-01-08", Completed: true})
	require.NoError(t, err)
	// previous week, must not appear
	_, err = svc.RecordCompletion(ctx, models.EntryInput{HabitID: habit.ID, Date: "2024-01-05", Completed: true})
	require.NoError(t, err)

	view, err := svc.WeekView(ctx, habit.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-08", view.Start)
	assert.Equal(t, "2024-01-14", view.End)
	require.Len(t, view.Days, 7)
	assert.True(t, view.Days[0].HasEntry)
	assert.True(t, view.Days[0].Completed)
	for _, d := range view.Days[1:] {
		assert.False(t, d.HasEntry, d.Day)
	}

	view, err = svc.WeekView(ctx, habit.ID, "2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", view.Start)
	assert.True(t, view.Days[4].HasEntry)

	_, err = svc.WeekView(ctx, habit.ID, "not-a-date")
	assert.ErrorIs(t, err, errors.ErrInvalidDate)
}

func TestStreakPolicyOption(t *testing.T) {
	svc, _ := setupService(t, WithStreakPolicy(models.StreakByEntries))
	assert.Equal(t, models.StreakByEntries, svc.StreakPolicy())

	svc, _ = setupService(t, WithStreakPolicy("bogus"))
	assert.Equal(t, models.StreakByCalendar, svc.StreakPolicy())
}
