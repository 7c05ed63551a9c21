package calendar

import (
	"context"
	"database/sql"
	"fmt"

	"garden-guide/internal/database"
)

// Repository is a database-backed repository for week and weekday reference data.
type Repository struct {
	db database.DBTX
}

// NewRepository creates a new Repository.
func NewRepository(d database.DBTX) *Repository {
	return &Repository{db: d}
}

// WithTx returns a Repository that runs its statements inside tx.
func (r *Repository) WithTx(tx *sql.Tx) *Repository {
	return &Repository{db: tx}
}

// Weeks returns all reference weeks ordered by ordinal.
func (r *Repository) Weeks(ctx context.Context) ([]Week, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, ordinal, start_label, end_label FROM weeks ORDER BY ordinal`)
	if err != nil {
		return nil, fmt.Errorf("failed to list weeks: %w", err)
	}
	defer rows.Close()

	var weeks []Week
	for rows.Next() {
		var w Week
		if err := rows.Scan(&w.ID, &w.Ordinal, &w.StartLabel, &w.EndLabel); err != nil {
			return nil, fmt.Errorf("failed to scan week: %w", err)
		}
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}

// SaveWeek inserts or updates a reference week, keyed by ordinal, and
// returns its id.
func (r *Repository) SaveWeek(ctx context.Context, w Week) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO weeks (ordinal, start_label, end_label) VALUES (?, ?, ?)
		ON CONFLICT (ordinal) DO UPDATE SET start_label = excluded.start_label, end_label = excluded.end_label
		RETURNING id`,
		w.Ordinal, w.StartLabel, w.EndLabel,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save week %d: %w", w.Ordinal, err)
	}
	return id, nil
}

// Weekdays returns the weekday reference rows ordered by number.
// An empty table yields DefaultWeekdays.
func (r *Repository) Weekdays(ctx context.Context) ([]Weekday, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT number, name FROM weekdays ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekdays: %w", err)
	}
	defer rows.Close()

	var days []Weekday
	for rows.Next() {
		var d Weekday
		if err := rows.Scan(&d.Number, &d.Name); err != nil {
			return nil, fmt.Errorf("failed to scan weekday: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return DefaultWeekdays(), nil
	}
	return days, nil
}

// SaveWeekday inserts or renames a weekday.
func (r *Repository) SaveWeekday(ctx context.Context, d Weekday) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO weekdays (number, name) VALUES (?, ?)
		ON CONFLICT (number) DO UPDATE SET name = excluded.name`,
		d.Number, d.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to save weekday %d: %w", d.Number, err)
	}
	return nil
}
