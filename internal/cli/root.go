package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitgrid/internal/backup"
	"github.com/julianstephens/habitgrid/internal/config"
	"github.com/julianstephens/habitgrid/internal/habits"
	"github.com/julianstephens/habitgrid/internal/keyring"
	"github.com/julianstephens/habitgrid/internal/logger"
	"github.com/julianstephens/habitgrid/internal/models"
	"github.com/julianstephens/habitgrid/internal/storage"
	"github.com/julianstephens/habitgrid/internal/storage/postgres"
	"github.com/julianstephens/habitgrid/internal/storage/sqlite"
)

type Context struct {
	Store   storage.Provider
	Service *habits.Service
	Config  *config.Config
	// Owner is the user id every CLI and TUI operation acts as
	Owner string
}

// NewContext builds the store and habit service described by cfg.
// dbOverride, when set, replaces database.url.
func NewContext(cfg *config.Config, dbOverride string) (*Context, error) {
	store, err := OpenStore(cfg, dbOverride)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	svc := habits.NewService(store,
		habits.WithLocation(loc),
		habits.WithStreakPolicy(models.StreakPolicy(cfg.Stats.StreakPolicy)),
	)

	return &Context{
		Store:   store,
		Service: svc,
		Config:  cfg,
		Owner:   cfg.CLI.Owner,
	}, nil
}

// ErrEmbeddedCredentials is returned when a configured PostgreSQL URL carries a password
var ErrEmbeddedCredentials = errors.New("PostgreSQL connection strings with embedded credentials are not allowed in config or flags")

// OpenStore picks the storage backend. A connection string from HABITGRID_DB_CONNECTION or
// the OS keyring wins. Otherwise the configured URL selects PostgreSQL or a SQLite file.
func OpenStore(cfg *config.Config, dbOverride string) (storage.Provider, error) {
	connStr, source, err := keyring.ResolveConnectionString()
	if err != nil {
		logger.Warn("keyring lookup failed, falling back to config", "error", err)
	}
	if connStr != "" {
		logger.Debug("using PostgreSQL connection string", "source", source)
		return postgres.New(connStr, postgres.WithMaxConnections(cfg.Database.MaxConnections)), nil
	}

	target := cfg.Database.URL
	if dbOverride != "" {
		target = dbOverride
	}

	if storage.IsPostgresURL(target) {
		if _, err := postgres.ValidateConnString(target); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("%w; store it with 'habitgrid keyring set' or export HABITGRID_DB_CONNECTION", ErrEmbeddedCredentials)
			}
			return nil, err
		}
		return postgres.New(target, postgres.WithMaxConnections(cfg.Database.MaxConnections)), nil
	}

	return sqlite.NewStore(config.ExpandHome(target)), nil
}

// PerformAutomaticBackup snapshots a SQLite database and only logs failures
func (c *Context) PerformAutomaticBackup(ctx context.Context) {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(ctx); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ResolveHabit finds one of the owner's habits by id or by case-insensitive name
func (c *Context) ResolveHabit(ctx context.Context, ref string) (models.Habit, error) {
	list, err := c.Service.ListHabits(ctx, c.Owner)
	if err != nil {
		return models.Habit{}, err
	}

	var matches []models.Habit
	for _, h := range list {
		if h.ID == ref {
			return h, nil
		}
		if strings.EqualFold(h.Name, ref) {
			matches = append(matches, h)
		}
	}

	switch len(matches) {
	case 0:
		return models.Habit{}, fmt.Errorf("habit %q not found", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Habit{}, fmt.Errorf("%d habits are named %q, use the id instead", len(matches), ref)
	}
}

// ParseDays splits a comma-separated list of day names. Validation happens in the service.
func ParseDays(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	days := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			days = append(days, part)
		}
	}
	return days
}

// FormatDays renders a day set as three-letter abbreviations
func FormatDays(days models.DaySet) string {
	if len(days) == 7 {
		return "every day"
	}
	short := make([]string, 0, len(days))
	for _, d := range days {
		name := string(d)
		if len(name) > 3 {
			name = name[:3]
		}
		short = append(short, name)
	}
	return strings.Join(short, ",")
}
