package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/julianstephens/habitgrid/internal/models"
)

var entrySelectColumns = []string{
	"id", "habit_id", "to_char(day, 'YYYY-MM-DD') AS day", "completed", "note", "rating",
	"created_at", "updated_at",
}

type entryRow struct {
	ID        string         `db:"id"`
	HabitID   string         `db:"habit_id"`
	Day       string         `db:"day"`
	Completed bool           `db:"completed"`
	Note      sql.NullString `db:"note"`
	Rating    sql.NullInt64  `db:"rating"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r entryRow) toModel() models.HabitEntry {
	e := models.HabitEntry{
		ID:        r.ID,
		HabitID:   r.HabitID,
		Day:       r.Day,
		Completed: r.Completed,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Note.Valid {
		n := r.Note.String
		e.Note = &n
	}
	if r.Rating.Valid {
		v := int(r.Rating.Int64)
		e.Rating = &v
	}
	return e
}

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

// AddHabitEntry inserts a new entry. The habit_entries_habit_day_key constraint
// turns a second entry for the same habit and day into storage.ErrDuplicate.
func (s *Store) AddHabitEntry(ctx context.Context, entry models.HabitEntry) error {
	query, args, err := s.psql.Insert("habit_entries").
		Columns("id", "habit_id", "day", "completed", "note", "rating", "created_at", "updated_at").
		Values(entry.ID, entry.HabitID, entry.Day, entry.Completed,
			nullString(entry.Note), nullInt(entry.Rating), entry.CreatedAt, entry.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	_, err = s.db.ExecContext(ctx, query, args...)
	return mapError(err)
}

func (s *Store) getEntry(ctx context.Context, where sq.Eq) (models.HabitEntry, error) {
	query, args, err := s.psql.Select(entrySelectColumns...).
		From("habit_entries").
		Where(where).
		ToSql()
	if err != nil {
		return models.HabitEntry{}, fmt.Errorf("failed to build select: %w", err)
	}

	var row entryRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		return models.HabitEntry{}, mapError(err)
	}
	return row.toModel(), nil
}

func (s *Store) GetHabitEntry(ctx context.Context, id string) (models.HabitEntry, error) {
	return s.getEntry(ctx, sq.Eq{"id": id})
}

func (s *Store) GetHabitEntryForDay(ctx context.Context, habitID, day string) (models.HabitEntry, error) {
	return s.getEntry(ctx, sq.Eq{"habit_id": habitID, "day": day})
}

func (s *Store) GetHabitEntriesForHabit(ctx context.Context, habitID, startDay, endDay string) ([]models.HabitEntry, error) {
	builder := s.psql.Select(entrySelectColumns...).
		From("habit_entries").
		Where(sq.Eq{"habit_id": habitID})
	if startDay != "" {
		builder = builder.Where(sq.GtOrEq{"day": startDay})
	}
	if endDay != "" {
		builder = builder.Where(sq.LtOrEq{"day": endDay})
	}

	query, args, err := builder.OrderBy("habit_entries.day DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	var rows []entryRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	entries := make([]models.HabitEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.toModel())
	}
	return entries, nil
}

func (s *Store) UpdateHabitEntry(ctx context.Context, entry models.HabitEntry) error {
	query, args, err := s.psql.Update("habit_entries").
		Set("completed", entry.Completed).
		Set("note", nullString(entry.Note)).
		Set("rating", nullInt(entry.Rating)).
		Set("updated_at", entry.UpdatedAt).
		Where(sq.Eq{"id": entry.ID}).
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

func (s *Store) CountHabitEntries(ctx context.Context, habitID string) (int, error) {
	query, args, err := s.psql.Select("COUNT(*)").
		From("habit_entries").
		Where(sq.Eq{"habit_id": habitID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count: %w", err)
	}

	var count int
	err = s.db.GetContext(ctx, &count, query, args...)
	return count, err
}
