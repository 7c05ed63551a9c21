package frequency

import (
	"context"
	"database/sql"
	"fmt"

	"garden-guide/internal/database"
)

// Repository is a database-backed repository for frequencies.
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

// List returns every frequency keyed by id, with default weekdays resolved.
func (r *Repository) List(ctx context.Context) (map[int64]Frequency, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, occurrences_per_year FROM frequencies`)
	if err != nil {
		return nil, fmt.Errorf("failed to list frequencies: %w", err)
	}
	defer rows.Close()

	freqs := make(map[int64]Frequency)
	for rows.Next() {
		var f Frequency
		if err := rows.Scan(&f.ID, &f.Name, &f.OccurrencesPerYear); err != nil {
			return nil, fmt.Errorf("failed to scan frequency: %w", err)
		}
		freqs[f.ID] = f
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dayRows, err := r.db.QueryContext(ctx, `SELECT frequency_id, weekday FROM frequency_weekdays ORDER BY frequency_id, weekday`)
	if err != nil {
		return nil, fmt.Errorf("failed to list frequency weekdays: %w", err)
	}
	defer dayRows.Close()

	for dayRows.Next() {
		var id int64
		var day int
		if err := dayRows.Scan(&id, &day); err != nil {
			return nil, fmt.Errorf("failed to scan frequency weekday: %w", err)
		}
		f, ok := freqs[id]
		if !ok {
			continue
		}
		f.DefaultWeekdays = append(f.DefaultWeekdays, day)
		freqs[id] = f
	}
	return freqs, dayRows.Err()
}

// Save inserts or updates a frequency by name and replaces its default
// weekdays. It returns the frequency id.
func (r *Repository) Save(ctx context.Context, f Frequency) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO frequencies (name, occurrences_per_year) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET occurrences_per_year = excluded.occurrences_per_year
		RETURNING id`,
		f.Name, f.OccurrencesPerYear,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save frequency %q: %w", f.Name, err)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM frequency_weekdays WHERE frequency_id = ?`, id); err != nil {
		return 0, fmt.Errorf("failed to reset weekdays for frequency %q: %w", f.Name, err)
	}
	for _, d := range f.DefaultWeekdays {
		if _, err := r.db.ExecContext(ctx, `INSERT INTO frequency_weekdays (frequency_id, weekday) VALUES (?, ?)`, id, d); err != nil {
			return 0, fmt.Errorf("failed to save weekday %d for frequency %q: %w", d, f.Name, err)
		}
	}
	return id, nil
}
