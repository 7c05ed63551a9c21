package schedule

import (
	"context"
	"fmt"
	"time"

	"garden-guide/internal/calendar"
	"garden-guide/internal/frequency"
	"garden-guide/internal/variety"
)

// WeekSource provides week and weekday reference data.
type WeekSource interface {
	Weeks(ctx context.Context) ([]calendar.Week, error)
	Weekdays(ctx context.Context) ([]calendar.Weekday, error)
}

// FrequencySource provides frequencies keyed by id.
type FrequencySource interface {
	List(ctx context.Context) (map[int64]frequency.Frequency, error)
}

// VarietySource provides a user's active varieties and feed-day preferences.
type VarietySource interface {
	ListActive(ctx context.Context, userID string) ([]variety.Record, error)
	FeedDays(ctx context.Context, userID string) (map[int64]int, error)
}

// Request identifies one guide computation. With Current set the week is
// taken from the clock and Week is ignored; otherwise Week is looked up as
// given, so 0 is an unknown week like any other ordinal outside 1..52.
type Request struct {
	ID      string
	UserID  string
	Week    int
	Current bool
}

// Stats describes a guide computation for metrics.
type Stats struct {
	Week      int
	Varieties int
	Tasks     int
	Skipped   int
	Latency   time.Duration
}

// Guide is the weekly garden guide for one user.
type Guide struct {
	Week   calendar.Week `json:"week"`
	Weekly WeeklyTasks   `json:"weekly_tasks"`
	Daily  DailyTasks    `json:"daily_tasks"`
	Stats  Stats         `json:"-"`
}

// Service builds garden guides from stored data.
type Service struct {
	weeks       WeekSource
	frequencies FrequencySource
	varieties   VarietySource
	logger      Logger
	now         func() time.Time
}

// NewService creates a new Service. A nil logger writes to the standard logger.
func NewService(weeks WeekSource, frequencies FrequencySource, varieties VarietySource, logger Logger) *Service {
	return &Service{
		weeks:       weeks,
		frequencies: frequencies,
		varieties:   varieties,
		logger:      logger,
		now:         time.Now,
	}
}

// Guide computes the guide for req. An ordinal with no reference week,
// 0 included, yields calendar.ErrWeekNotFound.
func (s *Service) Guide(ctx context.Context, req Request) (*Guide, error) {
	started := s.now()

	weeks, err := s.weeks.Weeks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load weeks: %w", err)
	}
	idx := calendar.NewIndex(weeks)

	target := req.Week
	if req.Current {
		target = calendar.CurrentOrdinal(started)
	}
	week, err := idx.Week(target)
	if err != nil {
		return nil, err
	}

	weekdays, err := s.weeks.Weekdays(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekdays: %w", err)
	}
	freqs, err := s.frequencies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load frequencies: %w", err)
	}
	records, err := s.varieties.ListActive(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active varieties: %w", err)
	}
	feedDays, err := s.varieties.FeedDays(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load feed days: %w", err)
	}

	facts := make([]variety.Facts, 0, len(records))
	for _, rec := range records {
		facts = append(facts, variety.Resolve(rec, idx, freqs))
	}

	d := NewDeriver(req.ID, s.logger)
	guide := &Guide{
		Week:   week,
		Weekly: d.Weekly(target, facts),
		Daily:  d.Daily(target, facts, weekdays, FeedDays(feedDays)),
	}
	guide.Stats = Stats{
		Week:      target,
		Varieties: len(facts),
		Tasks:     guide.Weekly.Count() + guide.Daily.Count(),
		Skipped:   d.Skipped(),
		Latency:   s.now().Sub(started),
	}
	return guide, nil
}
