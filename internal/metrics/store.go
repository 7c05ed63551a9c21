package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"garden-guide/internal/schedule"
)

// GuideMetric records metadata for a single guide computation.
type GuideMetric struct {
	UserID    string
	Source    string // "api", "telegram" or "cli"
	Week      int
	Varieties int
	Tasks     int
	Skipped   int
	LatencyMS int64
	Timestamp time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m GuideMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guide_metrics (user_id, source, week, varieties, tasks, skipped, latency_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.UserID, m.Source, m.Week, m.Varieties, m.Tasks, m.Skipped, m.LatencyMS, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to record guide metric: %w", err)
	}
	return nil
}

// FromGuide converts guide stats into a GuideMetric.
func FromGuide(userID, source string, stats schedule.Stats) GuideMetric {
	return GuideMetric{
		UserID:    userID,
		Source:    source,
		Week:      stats.Week,
		Varieties: stats.Varieties,
		Tasks:     stats.Tasks,
		Skipped:   stats.Skipped,
		LatencyMS: stats.Latency.Milliseconds(),
		Timestamp: time.Now().UTC(),
	}
}

// DailyUsage represents guide totals for a single day.
type DailyUsage struct {
	Date    string
	Guides  int
	Tasks   int
	Skipped int
}

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(timestamp, 1, 10) AS day, COUNT(*), SUM(tasks), SUM(skipped)
		FROM guide_metrics
		WHERE timestamp >= ?
		GROUP BY day
		ORDER BY day DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		var day sql.NullString
		var tasks, skipped sql.NullInt64
		if err := rows.Scan(&day, &u.Guides, &tasks, &skipped); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		u.Date = "Unknown"
		if day.Valid {
			u.Date = day.String
		}
		u.Tasks = int(tasks.Int64)
		u.Skipped = int(skipped.Int64)
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days and
// returns how many were removed.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	res, err := s.db.ExecContext(ctx, `DELETE FROM guide_metrics WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up guide metrics: %w", err)
	}
	return res.RowsAffected()
}
