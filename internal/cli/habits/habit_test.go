package habits

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/habitgrid/internal/cli"
	"github.com/julianstephens/habitgrid/internal/config"
	"github.com/julianstephens/habitgrid/internal/constants"
	"github.com/julianstephens/habitgrid/internal/errors"
	"github.com/julianstephens/habitgrid/internal/models"
)

func setupContext(t *testing.T) *cli.Context {
	t.Helper()
	gokeyring.MockInit()
	t.Setenv(constants.EnvDBConnection, "")

	cfg := config.Default()
	cfg.Database.URL = filepath.Join(t.TempDir(), "habitgrid.db")
	cfg.Timezone = "UTC"

	ctx, err := cli.NewContext(cfg, "")
	require.NoError(t, err)
	require.NoError(t, ctx.Store.Init(context.Background()))
	_, err = ctx.Service.EnsureDefaultHabits(context.Background(), ctx.Owner)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctx.Store.Close() })
	return ctx
}

func TestHabitAddEditDelete(t *testing.T) {
	ctx := setupContext(t)
	bg := context.Background()

	add := &HabitAddCmd{Name: "Run", Frequency: "weekly", Days: "mon,wed", Variant: "standard"}
	err := add.Run(ctx)
	require.Error(t, err, "abbreviated day names are rejected")
	assert.ErrorIs(t, err, errors.ErrInvalidDayName)

	add.Days = "monday, wednesday"
	require.NoError(t, add.Run(ctx))

	habit, err := ctx.ResolveHabit(bg, "run")
	require.NoError(t, err)
	assert.Equal(t, models.NewDaySet(models.Monday, models.Wednesday), habit.DaysOfWeek)

	require.NoError(t, (&HabitEditCmd{Habit: "Run", Name: "Long run", Days: "saturday"}).Run(ctx))
	habit, err = ctx.ResolveHabit(bg, habit.ID)
	require.NoError(t, err)
	assert.Equal(t, "Long run", habit.Name)
	assert.Equal(t, models.DaySet{models.Saturday}, habit.DaysOfWeek)
	assert.Equal(t, models.FrequencyWeekly, habit.Frequency)

	require.NoError(t, (&HabitListCmd{}).Run(ctx))
	require.NoError(t, (&HabitShowCmd{Habit: habit.ID}).Run(ctx))

	err = (&HabitDeleteCmd{Habit: "Learning log", Yes: true}).Run(ctx)
	assert.ErrorIs(t, err, errors.ErrSystemDefinedHabit)

	require.NoError(t, (&HabitDeleteCmd{Habit: habit.ID, Yes: true}).Run(ctx))
	_, err = ctx.ResolveHabit(bg, habit.ID)
	assert.Error(t, err)
}

func TestHabitEntryCommands(t *testing.T) {
	ctx := setupContext(t)
	bg := context.Background()

	require.NoError(t, (&HabitAddCmd{Name: "Floss", Frequency: "daily", Days: "monday,tuesday,wednesday,thursday,friday,saturday,sunday"}).Run(ctx))
	floss, err := ctx.ResolveHabit(bg, "Floss")
	require.NoError(t, err)
	today := ctx.Service.Today().Format(constants.DateFormat)

	require.NoError(t, (&HabitMarkCmd{Habit: "Floss"}).Run(ctx))
	entry, err := ctx.Service.EntryForDay(bg, floss.ID, today)
	require.NoError(t, err)
	assert.True(t, entry.Completed)

	// a note on a done day keeps it done
	require.NoError(t, (&HabitNoteCmd{Habit: "Floss", Text: "before bed"}).Run(ctx))
	entry, err = ctx.Service.EntryForDay(bg, floss.ID, today)
	require.NoError(t, err)
	assert.True(t, entry.Completed)
	require.NotNil(t, entry.Note)
	assert.Equal(t, "before bed", *entry.Note)

	require.NoError(t, (&HabitMarkCmd{Habit: "Floss", Undo: true}).Run(ctx))
	entry, err = ctx.Service.EntryForDay(bg, floss.ID, today)
	require.NoError(t, err)
	assert.False(t, entry.Completed)

	require.NoError(t, (&HabitEditEntryCmd{Habit: "Floss", Completed: "yes", Rating: "7"}).Run(ctx))
	entry, err = ctx.Service.EntryForDay(bg, floss.ID, today)
	require.NoError(t, err)
	assert.True(t, entry.Completed)
	require.NotNil(t, entry.Rating)
	assert.Equal(t, 7, *entry.Rating)

	require.Error(t, (&HabitEditEntryCmd{Habit: "Floss", Completed: "maybe"}).Run(ctx))
	require.Error(t, (&HabitEditEntryCmd{Habit: "Floss", Rating: "ten"}).Run(ctx))

	require.NoError(t, (&HabitRateCmd{Habit: "Day rating", Rating: 8}).Run(ctx))
	rating, err := ctx.ResolveHabit(bg, "day rating")
	require.NoError(t, err)
	entry, err = ctx.Service.EntryForDay(bg, rating.ID, today)
	require.NoError(t, err)
	assert.True(t, entry.Completed, "a rating completes the day")

	err = (&HabitRateCmd{Habit: "Day rating", Rating: 11}).Run(ctx)
	assert.ErrorIs(t, err, errors.ErrRatingOutOfRange)

	require.NoError(t, (&HabitNoteCmd{Habit: "Learning log", Text: "kong parses struct tags"}).Run(ctx))
	require.NoError(t, (&HabitStatsCmd{Habit: "Floss"}).Run(ctx))
	require.NoError(t, (&HabitWeekCmd{Habit: "Floss"}).Run(ctx))
}

func TestCell(t *testing.T) {
	note := "ok"
	rating := 6
	assert.Equal(t, " · ", cell(models.DayView{}))
	assert.Equal(t, "   ", cell(models.DayView{Scheduled: true, Future: true}))
	assert.Equal(t, "[ ]", cell(models.DayView{Scheduled: true}))
	assert.Equal(t, "[x] 6/10 ok", cell(models.DayView{Scheduled: true, HasEntry: true, Completed: true, Rating: &rating, Note: &note}))
	assert.Equal(t, "Wed", shortDay(models.Wednesday))
}
