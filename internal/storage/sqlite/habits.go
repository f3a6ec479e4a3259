package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/habitgrid/internal/models"
)

const habitColumns = `id, owner_id, name, description, color, frequency, days_of_week,
	variant, is_system_defined, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var frequency, variant, days, createdAt, updatedAt string
	var system int

	err := row.Scan(&h.ID, &h.OwnerID, &h.Name, &h.Description, &h.Color, &frequency, &days,
		&variant, &system, &createdAt, &updatedAt)
	if err != nil {
		return models.Habit{}, err
	}

	h.Frequency = models.Frequency(frequency)
	h.Variant = models.Variant(variant)
	h.IsSystemDefined = system != 0

	var names []models.Weekday
	if err := json.Unmarshal([]byte(days), &names); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse days_of_week for habit %s: %w", h.ID, err)
	}
	h.DaysOfWeek = models.NewDaySet(names...)

	h.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %s: %w", h.ID, err)
	}
	h.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse updated_at for habit %s: %w", h.ID, err)
	}

	return h, nil
}

func encodeDays(days models.DaySet) (string, error) {
	b, err := json.Marshal(days.Strings())
	if err != nil {
		return "", fmt.Errorf("failed to encode days_of_week: %w", err)
	}
	return string(b), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Store) AddHabit(ctx context.Context, habit models.Habit) error {
	days, err := encodeDays(habit.DaysOfWeek)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		habit.ID, habit.OwnerID, habit.Name, habit.Description, habit.Color, string(habit.Frequency), days,
		string(habit.Variant), boolToInt(habit.IsSystemDefined),
		habit.CreatedAt.UTC().Format(time.RFC3339), habit.UpdatedAt.UTC().Format(time.RFC3339))

	return mapError(err)
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, mapError(err)
	}
	return h, nil
}

func (s *Store) GetHabitsForOwner(ctx context.Context, ownerID string) ([]models.Habit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+habitColumns+` FROM habits
		WHERE owner_id = ?
		ORDER BY is_system_defined DESC, created_at, name`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (s *Store) UpdateHabit(ctx context.Context, habit models.Habit) error {
	days, err := encodeDays(habit.DaysOfWeek)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE habits SET
			name = ?,
			description = ?,
			color = ?,
			frequency = ?,
			days_of_week = ?,
			variant = ?,
			updated_at = ?
		WHERE id = ?`,
		habit.Name, habit.Description, habit.Color, string(habit.Frequency), days,
		string(habit.Variant), habit.UpdatedAt.UTC().Format(time.RFC3339), habit.ID)
	if err != nil {
		return mapError(err)
	}

	return requireAffected(result)
}

func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM habit_entries WHERE habit_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete habit entries: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}

	return tx.Commit()
}

// nullString maps a nil pointer to SQL NULL
func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
