package variety

import (
	"database/sql"
	"errors"
	"fmt"

	"garden-guide/internal/calendar"
	"garden-guide/internal/frequency"
)

var (
	// ErrIncompleteWindow marks a paired field with only one half populated.
	ErrIncompleteWindow = errors.New("incomplete window")
	// ErrUnknownWeek marks a week id missing from the request's week index.
	ErrUnknownWeek = errors.New("unknown week reference")
	// ErrUnknownFrequency marks a frequency id with no reference row.
	ErrUnknownFrequency = errors.New("unknown frequency reference")
)

// Record is a variety row as stored, with opaque week and frequency ids.
type Record struct {
	ID         int64
	Name       string
	FamilyName string
	Lifecycle  string

	SowStartWeekID        sql.NullInt64
	SowEndWeekID          sql.NullInt64
	TransplantStartWeekID sql.NullInt64
	TransplantEndWeekID   sql.NullInt64
	HarvestStartWeekID    sql.NullInt64
	HarvestEndWeekID      sql.NullInt64
	PruneStartWeekID      sql.NullInt64
	PruneEndWeekID        sql.NullInt64

	FeedStartWeekID sql.NullInt64
	FeedFrequencyID sql.NullInt64
	FeedTypeID      sql.NullInt64
	FeedTypeName    string

	WaterFrequencyID sql.NullInt64
	// WaterWeekdays is the variety's own watering days. Empty falls back to
	// the water frequency's defaults.
	WaterWeekdays []int

	HighTempWaterFrequencyID sql.NullInt64
	HighTempThreshold        sql.NullFloat64
}

// Resolve turns a stored record into calendar facts using idx for week
// ordinals and freqs for frequencies. Problems are recorded as faults on
// the affected field; Resolve never fails as a whole.
func Resolve(rec Record, idx *calendar.Index, freqs map[int64]frequency.Frequency) Facts {
	f := Facts{
		Summary: Summary{ID: rec.ID, Name: rec.Name, FamilyName: rec.FamilyName},
	}

	lc, err := ParseLifecycle(rec.Lifecycle)
	if err != nil {
		f = f.WithFault(FieldLifecycle, err)
	}
	f.Lifecycle = lc

	windows := []struct {
		field      Field
		start, end sql.NullInt64
		required   bool
		dst        *Window
	}{
		{FieldSow, rec.SowStartWeekID, rec.SowEndWeekID, true, &f.Sow},
		{FieldTransplant, rec.TransplantStartWeekID, rec.TransplantEndWeekID, false, &f.Transplant},
		{FieldHarvest, rec.HarvestStartWeekID, rec.HarvestEndWeekID, true, &f.Harvest},
		{FieldPrune, rec.PruneStartWeekID, rec.PruneEndWeekID, false, &f.Prune},
	}
	for _, w := range windows {
		win, err := resolveWindow(w.start, w.end, w.required, idx)
		if err != nil {
			f = f.WithFault(w.field, err)
			continue
		}
		*w.dst = win
	}

	feed, err := resolveFeed(rec, idx, freqs)
	if err != nil {
		f = f.WithFault(FieldFeed, err)
	}
	f.Feed = feed

	water, err := resolveWater(rec, freqs)
	if err != nil {
		f = f.WithFault(FieldWater, err)
	}
	f.Water = water

	if rec.HighTempWaterFrequencyID.Valid {
		if hf, ok := freqs[rec.HighTempWaterFrequencyID.Int64]; ok {
			f.HighTempWater = &HighTempWater{Frequency: hf, ThresholdC: rec.HighTempThreshold.Float64}
		}
	}
	return f
}

func resolveWindow(start, end sql.NullInt64, required bool, idx *calendar.Index) (Window, error) {
	if !start.Valid && !end.Valid {
		if required {
			return NoWindow(), fmt.Errorf("%w: start and end missing", ErrIncompleteWindow)
		}
		return NoWindow(), nil
	}
	if start.Valid != end.Valid {
		return NoWindow(), fmt.Errorf("%w: only one bound set", ErrIncompleteWindow)
	}
	s, err := resolveWeek(start.Int64, idx)
	if err != nil {
		return NoWindow(), err
	}
	e, err := resolveWeek(end.Int64, idx)
	if err != nil {
		return NoWindow(), err
	}
	return NewWindow(s, e), nil
}

func resolveWeek(id int64, idx *calendar.Index) (int, error) {
	o, ok := idx.Ordinal(id)
	if !ok {
		return 0, fmt.Errorf("%w: week id %d", ErrUnknownWeek, id)
	}
	return o, nil
}

func resolveFeed(rec Record, idx *calendar.Index, freqs map[int64]frequency.Frequency) (*FeedSchedule, error) {
	set := 0
	for _, v := range []sql.NullInt64{rec.FeedStartWeekID, rec.FeedFrequencyID, rec.FeedTypeID} {
		if v.Valid {
			set++
		}
	}
	switch set {
	case 0:
		return nil, nil
	case 3:
	default:
		return nil, fmt.Errorf("%w: feed schedule has %d of 3 fields", ErrIncompleteWindow, set)
	}

	start, err := resolveWeek(rec.FeedStartWeekID.Int64, idx)
	if err != nil {
		return nil, err
	}
	freq, ok := freqs[rec.FeedFrequencyID.Int64]
	if !ok {
		return nil, fmt.Errorf("%w: feed frequency id %d", ErrUnknownFrequency, rec.FeedFrequencyID.Int64)
	}
	return &FeedSchedule{
		StartWeek: start,
		Frequency: freq,
		FeedType:  FeedType{ID: rec.FeedTypeID.Int64, Name: rec.FeedTypeName},
	}, nil
}

func resolveWater(rec Record, freqs map[int64]frequency.Frequency) (WaterSchedule, error) {
	if !rec.WaterFrequencyID.Valid {
		return WaterSchedule{}, fmt.Errorf("%w: water frequency missing", ErrUnknownFrequency)
	}
	freq, ok := freqs[rec.WaterFrequencyID.Int64]
	if !ok {
		return WaterSchedule{}, fmt.Errorf("%w: water frequency id %d", ErrUnknownFrequency, rec.WaterFrequencyID.Int64)
	}
	days := rec.WaterWeekdays
	if len(days) == 0 {
		days = freq.DefaultWeekdays
	}
	return WaterSchedule{Frequency: freq, Weekdays: days}, nil
}
