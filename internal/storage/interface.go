package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/julianstephens/habitgrid/internal/models"
)

// Errors returned by every Provider implementation. Callers match with errors.Is.
var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate reports a unique constraint violation, e.g. a second entry for the same habit and day
	ErrDuplicate = errors.New("record already exists")
	// ErrReferenceMissing reports a foreign key violation
	ErrReferenceMissing = errors.New("referenced record does not exist")
	ErrNotInitialized   = errors.New("storage not initialized")
)

type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error
	// Migrate applies pending schema migrations and returns how many ran
	Migrate(ctx context.Context, logFn func(string)) (int, error)

	// Habits
	AddHabit(ctx context.Context, habit models.Habit) error
	GetHabit(ctx context.Context, id string) (models.Habit, error)
	GetHabitsForOwner(ctx context.Context, ownerID string) ([]models.Habit, error)
	UpdateHabit(ctx context.Context, habit models.Habit) error
	// DeleteHabit removes the habit and all of its entries in one transaction
	DeleteHabit(ctx context.Context, id string) error

	// Habit Entries
	AddHabitEntry(ctx context.Context, entry models.HabitEntry) error
	GetHabitEntry(ctx context.Context, id string) (models.HabitEntry, error)
	GetHabitEntryForDay(ctx context.Context, habitID, day string) (models.HabitEntry, error)
	// GetHabitEntriesForHabit returns entries with startDay <= day <= endDay, newest first.
	// An empty bound is open.
	GetHabitEntriesForHabit(ctx context.Context, habitID, startDay, endDay string) ([]models.HabitEntry, error)
	UpdateHabitEntry(ctx context.Context, entry models.HabitEntry) error
	CountHabitEntries(ctx context.Context, habitID string) (int, error)

	// Utils
	GetConfigPath() string
}

// IsPostgresURL reports whether dsn selects the PostgreSQL backend
func IsPostgresURL(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
