package variety

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"garden-guide/internal/database"
)

// ErrNotFound is returned when a variety does not exist.
var ErrNotFound = errors.New("variety not found")

// WeekRange is a pair of week ids bounding a window.
type WeekRange struct {
	StartWeekID int64
	EndWeekID   int64
}

// NewFeed is the feed schedule of a variety being created.
type NewFeed struct {
	StartWeekID int64
	FrequencyID int64
	FeedTypeID  int64
}

// NewVariety holds the data needed to create a variety.
type NewVariety struct {
	Name                     string
	FamilyID                 int64 // 0 for none
	Lifecycle                Lifecycle
	Sow                      WeekRange
	Transplant               *WeekRange
	Harvest                  WeekRange
	Prune                    *WeekRange
	Feed                     *NewFeed
	WaterFrequencyID         int64
	HighTempWaterFrequencyID int64 // 0 for none
	HighTempThreshold        float64
}

// Validate checks the fields a variety cannot be stored without.
func (v NewVariety) Validate() error {
	if v.Name == "" {
		return errors.New("variety name is required")
	}
	if _, err := ParseLifecycle(string(v.Lifecycle)); err != nil {
		return err
	}
	for name, r := range map[string]*WeekRange{"sow": &v.Sow, "harvest": &v.Harvest, "transplant": v.Transplant, "prune": v.Prune} {
		if r == nil {
			continue
		}
		if r.StartWeekID == 0 || r.EndWeekID == 0 {
			return fmt.Errorf("%w: %s window needs both weeks", ErrIncompleteWindow, name)
		}
	}
	if f := v.Feed; f != nil && (f.StartWeekID == 0 || f.FrequencyID == 0 || f.FeedTypeID == 0) {
		return fmt.Errorf("%w: feed schedule needs start week, frequency and feed type", ErrIncompleteWindow)
	}
	if v.WaterFrequencyID == 0 {
		return errors.New("water frequency is required")
	}
	return nil
}

// Repository is a database-backed repository for varieties and the
// per-user data attached to them.
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

// txBeginner is satisfied by *sql.DB but not by *sql.Tx.
type txBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Create stores a new variety and seeds its watering days from the water
// frequency's default weekdays. Both writes land together or not at all:
// on a bare connection Create opens its own transaction, inside WithTx it
// joins the caller's.
func (r *Repository) Create(ctx context.Context, v NewVariety) (int64, error) {
	if err := v.Validate(); err != nil {
		return 0, fmt.Errorf("invalid variety %q: %w", v.Name, err)
	}

	b, ok := r.db.(txBeginner)
	if !ok {
		return r.create(ctx, v)
	}
	tx, err := b.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	id, err := r.WithTx(tx).create(ctx, v)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("Warning: rollback failed: %v", rbErr)
		}
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit variety %q: %w", v.Name, err)
	}
	return id, nil
}

func (r *Repository) create(ctx context.Context, v NewVariety) (int64, error) {

	var transplantStart, transplantEnd, pruneStart, pruneEnd sql.NullInt64
	if v.Transplant != nil {
		transplantStart = nullID(v.Transplant.StartWeekID)
		transplantEnd = nullID(v.Transplant.EndWeekID)
	}
	if v.Prune != nil {
		pruneStart = nullID(v.Prune.StartWeekID)
		pruneEnd = nullID(v.Prune.EndWeekID)
	}
	var feedStart, feedFreq, feedType sql.NullInt64
	if v.Feed != nil {
		feedStart = nullID(v.Feed.StartWeekID)
		feedFreq = nullID(v.Feed.FrequencyID)
		feedType = nullID(v.Feed.FeedTypeID)
	}
	var threshold sql.NullFloat64
	if v.HighTempWaterFrequencyID != 0 {
		threshold = sql.NullFloat64{Float64: v.HighTempThreshold, Valid: true}
	}

	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO varieties (
			name, family_id, lifecycle,
			sow_start_week_id, sow_end_week_id,
			transplant_start_week_id, transplant_end_week_id,
			harvest_start_week_id, harvest_end_week_id,
			prune_start_week_id, prune_end_week_id,
			feed_start_week_id, feed_frequency_id, feed_type_id,
			water_frequency_id, high_temp_water_frequency_id, high_temp_threshold,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		v.Name, nullID(v.FamilyID), string(v.Lifecycle),
		v.Sow.StartWeekID, v.Sow.EndWeekID,
		transplantStart, transplantEnd,
		v.Harvest.StartWeekID, v.Harvest.EndWeekID,
		pruneStart, pruneEnd,
		feedStart, feedFreq, feedType,
		v.WaterFrequencyID, nullID(v.HighTempWaterFrequencyID), threshold,
		time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert variety %q: %w", v.Name, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO variety_water_days (variety_id, weekday)
		SELECT ?, weekday FROM frequency_weekdays WHERE frequency_id = ?`,
		id, v.WaterFrequencyID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy water days for variety %q: %w", v.Name, err)
	}
	return id, nil
}

const selectRecord = `
	SELECT v.id, v.name, COALESCE(f.name, ''), v.lifecycle,
		v.sow_start_week_id, v.sow_end_week_id,
		v.transplant_start_week_id, v.transplant_end_week_id,
		v.harvest_start_week_id, v.harvest_end_week_id,
		v.prune_start_week_id, v.prune_end_week_id,
		v.feed_start_week_id, v.feed_frequency_id, v.feed_type_id, COALESCE(ft.name, ''),
		v.water_frequency_id, v.high_temp_water_frequency_id, v.high_temp_threshold
	FROM varieties v
	LEFT JOIN families f ON f.id = v.family_id
	LEFT JOIN feed_types ft ON ft.id = v.feed_type_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var rec Record
	err := s.Scan(
		&rec.ID, &rec.Name, &rec.FamilyName, &rec.Lifecycle,
		&rec.SowStartWeekID, &rec.SowEndWeekID,
		&rec.TransplantStartWeekID, &rec.TransplantEndWeekID,
		&rec.HarvestStartWeekID, &rec.HarvestEndWeekID,
		&rec.PruneStartWeekID, &rec.PruneEndWeekID,
		&rec.FeedStartWeekID, &rec.FeedFrequencyID, &rec.FeedTypeID, &rec.FeedTypeName,
		&rec.WaterFrequencyID, &rec.HighTempWaterFrequencyID, &rec.HighTempThreshold,
	)
	return rec, err
}

// Get retrieves a variety record by id.
func (r *Repository) Get(ctx context.Context, id int64) (Record, error) {
	rec, err := scanRecord(r.db.QueryRowContext(ctx, selectRecord+` WHERE v.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return Record{}, fmt.Errorf("failed to get variety %d: %w", id, err)
	}

	days, err := r.waterDays(ctx, `SELECT variety_id, weekday FROM variety_water_days WHERE variety_id = ? ORDER BY weekday`, id)
	if err != nil {
		return Record{}, err
	}
	rec.WaterWeekdays = days[id]
	return rec, nil
}

// IDByName returns the id of the oldest variety called name.
func (r *Repository) IDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM varieties WHERE name = ? ORDER BY id LIMIT 1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return 0, fmt.Errorf("failed to look up variety %q: %w", name, err)
	}
	return id, nil
}

// ListActive returns the records of every variety the user is growing, in
// the order they were activated.
func (r *Repository) ListActive(ctx context.Context, userID string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, selectRecord+`
		JOIN user_active_varieties uva ON uva.variety_id = v.id
		WHERE uva.user_id = ?
		ORDER BY uva.created_at, v.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active varieties for user %s: %w", userID, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan variety: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	days, err := r.waterDays(ctx, `
		SELECT vwd.variety_id, vwd.weekday
		FROM variety_water_days vwd
		JOIN user_active_varieties uva ON uva.variety_id = vwd.variety_id
		WHERE uva.user_id = ?
		ORDER BY vwd.variety_id, vwd.weekday`, userID)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].WaterWeekdays = days[records[i].ID]
	}
	return records, nil
}

func (r *Repository) waterDays(ctx context.Context, query string, arg any) (map[int64][]int, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list water days: %w", err)
	}
	defer rows.Close()

	days := make(map[int64][]int)
	for rows.Next() {
		var id int64
		var d int
		if err := rows.Scan(&id, &d); err != nil {
			return nil, fmt.Errorf("failed to scan water day: %w", err)
		}
		days[id] = append(days[id], d)
	}
	return days, rows.Err()
}

// Activate marks a variety as being grown by the user. Activating twice is
// a no-op.
func (r *Repository) Activate(ctx context.Context, userID string, varietyID int64) error {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM varieties WHERE id = ?`, varietyID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: id %d", ErrNotFound, varietyID)
		}
		return fmt.Errorf("failed to check variety %d: %w", varietyID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO user_active_varieties (user_id, variety_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id, variety_id) DO NOTHING`,
		userID, varietyID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to activate variety %d for user %s: %w", varietyID, userID, err)
	}
	return nil
}

// Deactivate stops the user growing a variety.
func (r *Repository) Deactivate(ctx context.Context, userID string, varietyID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_active_varieties WHERE user_id = ? AND variety_id = ?`, userID, varietyID)
	if err != nil {
		return fmt.Errorf("failed to deactivate variety %d for user %s: %w", varietyID, userID, err)
	}
	return nil
}

// FeedDays returns the user's preferred weekday per feed type id.
func (r *Repository) FeedDays(ctx context.Context, userID string) (map[int64]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT feed_type_id, weekday FROM user_feed_days WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed days for user %s: %w", userID, err)
	}
	defer rows.Close()

	prefs := make(map[int64]int)
	for rows.Next() {
		var feedTypeID int64
		var day int
		if err := rows.Scan(&feedTypeID, &day); err != nil {
			return nil, fmt.Errorf("failed to scan feed day: %w", err)
		}
		prefs[feedTypeID] = day
	}
	return prefs, rows.Err()
}

// SetFeedDay records the weekday the user feeds a feed type on.
func (r *Repository) SetFeedDay(ctx context.Context, userID string, feedTypeID int64, weekday int) error {
	if weekday < 1 || weekday > 7 {
		return fmt.Errorf("weekday %d out of range 1..7", weekday)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_feed_days (user_id, feed_type_id, weekday) VALUES (?, ?, ?)
		ON CONFLICT (user_id, feed_type_id) DO UPDATE SET weekday = excluded.weekday`,
		userID, feedTypeID, weekday,
	)
	if err != nil {
		return fmt.Errorf("failed to set feed day for user %s: %w", userID, err)
	}
	return nil
}

// SaveFamily inserts a plant family if missing and returns its id.
func (r *Repository) SaveFamily(ctx context.Context, name string) (int64, error) {
	return r.upsertName(ctx, "families", name)
}

// SaveFeedType inserts a feed type if missing and returns its id.
func (r *Repository) SaveFeedType(ctx context.Context, name string) (int64, error) {
	return r.upsertName(ctx, "feed_types", name)
}

func (r *Repository) upsertName(ctx context.Context, table, name string) (int64, error) {
	var id int64
	// table is one of a fixed set of identifiers, never user input.
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO `+table+` (name) VALUES (?)
		ON CONFLICT (name) DO UPDATE SET name = excluded.name
		RETURNING id`, name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save %s %q: %w", table, name, err)
	}
	return id, nil
}

// SaveLifecycle stores a lifecycle's productivity years.
func (r *Repository) SaveLifecycle(ctx context.Context, info LifecycleInfo) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lifecycles (name, productivity_years) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET productivity_years = excluded.productivity_years`,
		string(info.Lifecycle), info.ProductivityYears,
	)
	if err != nil {
		return fmt.Errorf("failed to save lifecycle %s: %w", info.Lifecycle, err)
	}
	return nil
}

// Lifecycles returns the lifecycle reference rows. Rows whose name does
// not parse are skipped with a warning.
func (r *Repository) Lifecycles(ctx context.Context) ([]LifecycleInfo, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, productivity_years FROM lifecycles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list lifecycles: %w", err)
	}
	defer rows.Close()

	var infos []LifecycleInfo
	for rows.Next() {
		var name string
		var years int
		if err := rows.Scan(&name, &years); err != nil {
			return nil, fmt.Errorf("failed to scan lifecycle: %w", err)
		}
		lc, err := ParseLifecycle(name)
		if err != nil {
			fmt.Printf("Warning: skipping lifecycle row: %v\n", err)
			continue
		}
		infos = append(infos, LifecycleInfo{Lifecycle: lc, ProductivityYears: years})
	}
	return infos, rows.Err()
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
