package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	pq "github.com/lib/pq"

	"github.com/julianstephens/habitgrid/internal/models"
)

var habitColumns = []string{
	"id", "owner_id", "name", "description", "color", "frequency", "days_of_week",
	"variant", "is_system_defined", "created_at", "updated_at",
}

type habitRow struct {
	ID              string         `db:"id"`
	OwnerID         string         `db:"owner_id"`
	Name            string         `db:"name"`
	Description     string         `db:"description"`
	Color           string         `db:"color"`
	Frequency       string         `db:"frequency"`
	DaysOfWeek      pq.StringArray `db:"days_of_week"`
	Variant         string         `db:"variant"`
	IsSystemDefined bool           `db:"is_system_defined"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (r habitRow) toModel() models.Habit {
	days := make([]models.Weekday, len(r.DaysOfWeek))
	for i, d := range r.DaysOfWeek {
		days[i] = models.Weekday(d)
	}
	return models.Habit{
		ID:              r.ID,
		OwnerID:         r.OwnerID,
		Name:            r.Name,
		Description:     r.Description,
		Color:           r.Color,
		Frequency:       models.Frequency(r.Frequency),
		DaysOfWeek:      models.NewDaySet(days...),
		Variant:         models.Variant(r.Variant),
		IsSystemDefined: r.IsSystemDefined,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func (s *Store) AddHabit(ctx context.Context, habit models.Habit) error {
	query, args, err := s.psql.Insert("habits").
		Columns(habitColumns...).
		Values(habit.ID, habit.OwnerID, habit.Name, habit.Description, habit.Color,
			string(habit.Frequency), pq.StringArray(habit.DaysOfWeek.Strings()),
			string(habit.Variant), habit.IsSystemDefined, habit.CreatedAt, habit.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	_, err = s.db.ExecContext(ctx, query, args...)
	return mapError(err)
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	query, args, err := s.psql.Select(habitColumns...).
		From("habits").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to build select: %w", err)
	}

	var row habitRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		return models.Habit{}, mapError(err)
	}
	return row.toModel(), nil
}

func (s *Store) GetHabitsForOwner(ctx context.Context, ownerID string) ([]models.Habit, error) {
	query, args, err := s.psql.Select(habitColumns...).
		From("habits").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("is_system_defined DESC", "created_at", "name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	var rows []habitRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	habits := make([]models.Habit, 0, len(rows))
	for _, r := range rows {
		habits = append(habits, r.toModel())
	}
	return habits, nil
}

func (s *Store) UpdateHabit(ctx context.Context, habit models.Habit) error {
	query, args, err := s.psql.Update("habits").
		SetMap(map[string]any{
			"name":         habit.Name,
			"description":  habit.Description,
			"color":        habit.Color,
			"frequency":    string(habit.Frequency),
			"days_of_week": pq.StringArray(habit.DaysOfWeek.Strings()),
			"variant":      string(habit.Variant),
			"updated_at":   habit.UpdatedAt,
		}).
		Where(sq.Eq{"id": habit.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	return s.withTransaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := s.psql.Delete("habit_entries").Where(sq.Eq{"habit_id": id}).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to delete habit entries: %w", err)
		}

		query, args, err = s.psql.Delete("habits").Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to delete habit: %w", err)
		}
		return requireAffected(result)
	})
}
