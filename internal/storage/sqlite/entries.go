package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitgrid/internal/models"
)

const entryColumns = `id, habit_id, day, completed, note, rating, created_at, updated_at`

func scanEntry(row rowScanner) (models.HabitEntry, error) {
	var e models.HabitEntry
	var completed int
	var note sql.NullString
	var rating sql.NullInt64
	var createdAt, updatedAt string

	err := row.Scan(&e.ID, &e.HabitID, &e.Day, &completed, &note, &rating, &createdAt, &updatedAt)
	if err != nil {
		return models.HabitEntry{}, err
	}

	e.Completed = completed != 0
	if note.Valid {
		n := note.String
		e.Note = &n
	}
	if rating.Valid {
		r := int(rating.Int64)
		e.Rating = &r
	}

	e.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.HabitEntry{}, fmt.Errorf("failed to parse created_at for entry %s: %w", e.ID, err)
	}
	e.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return models.HabitEntry{}, fmt.Errorf("failed to parse updated_at for entry %s: %w", e.ID, err)
	}

	return e, nil
}

// AddHabitEntry inserts a new entry. A second entry for the same habit and day
// fails with storage.ErrDuplicate.
func (s *Store) AddHabitEntry(ctx context.Context, entry models.HabitEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habit_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.HabitID, entry.Day, boolToInt(entry.Completed),
		nullString(entry.Note), nullInt(entry.Rating),
		entry.CreatedAt.UTC().Format(time.RFC3339), entry.UpdatedAt.UTC().Format(time.RFC3339))

	return mapError(err)
}

func (s *Store) GetHabitEntry(ctx context.Context, id string) (models.HabitEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM habit_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err != nil {
		return models.HabitEntry{}, mapError(err)
	}
	return e, nil
}

func (s *Store) GetHabitEntryForDay(ctx context.Context, habitID, day string) (models.HabitEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+` FROM habit_entries
		WHERE habit_id = ? AND day = ?`, habitID, day)
	e, err := scanEntry(row)
	if err != nil {
		return models.HabitEntry{}, mapError(err)
	}
	return e, nil
}

func (s *Store) GetHabitEntriesForHabit(ctx context.Context, habitID, startDay, endDay string) ([]models.HabitEntry, error) {
	where := []string{"habit_id = ?"}
	args := []any{habitID}
	if startDay != "" {
		where = append(where, "day >= ?")
		args = append(args, startDay)
	}
	if endDay != "" {
		where = append(where, "day <= ?")
		args = append(args, endDay)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entryColumns+` FROM habit_entries
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY day DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.HabitEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *Store) UpdateHabitEntry(ctx context.Context, entry models.HabitEntry) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE habit_entries SET
			completed = ?,
			note = ?,
			rating = ?,
			updated_at = ?
		WHERE id = ?`,
		boolToInt(entry.Completed), nullString(entry.Note), nullInt(entry.Rating),
		entry.UpdatedAt.UTC().Format(time.RFC3339), entry.ID)
	if err != nil {
		return mapError(err)
	}

	return requireAffected(result)
}

func (s *Store) CountHabitEntries(ctx context.Context, habitID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM habit_entries WHERE habit_id = ?`, habitID).Scan(&count)
	return count, err
}
