package calendar

import (
	"errors"
	"fmt"
	"time"
)

// WeeksPerYear is the size of the ordinal space. Week ordinals run 1..52.
const WeeksPerYear = 52

// ErrWeekNotFound is returned when an ordinal has no reference week.
var ErrWeekNotFound = errors.New("week not found")

// Week is a reference week of the gardening year.
type Week struct {
	ID         int64  `json:"-"`
	Ordinal    int    `json:"ordinal"`
	StartLabel string `json:"start"`
	EndLabel   string `json:"end"`
}

// IsWithin reports whether current falls inside [start, end].
// When start > end the range crosses the year boundary.
func IsWithin(current, start, end int) bool {
	if start <= end {
		return start <= current && current <= end
	}
	return current >= start || current <= end
}

// DistanceForward returns how many weeks forward "to" lies from "from",
// wrapping at the end of the year. The result is always in [0, 51].
func DistanceForward(from, to int) int {
	d := (to - from) % WeeksPerYear
	if d < 0 {
		d += WeeksPerYear
	}
	return d
}

// CurrentOrdinal returns the ISO week number of t. ISO week 53 has no
// reference week and folds into week 52.
func CurrentOrdinal(t time.Time) int {
	_, week := t.ISOWeek()
	if week > WeeksPerYear {
		return WeeksPerYear
	}
	return week
}

// Index resolves reference weeks by ordinal and by opaque id.
// It is built once per request and must not be shared between requests.
type Index struct {
	byOrdinal map[int]Week
	ordinals  map[int64]int
}

// NewIndex builds an Index from the reference week rows.
func NewIndex(weeks []Week) *Index {
	idx := &Index{
		byOrdinal: make(map[int]Week, len(weeks)),
		ordinals:  make(map[int64]int, len(weeks)),
	}
	for _, w := range weeks {
		idx.byOrdinal[w.Ordinal] = w
		idx.ordinals[w.ID] = w.Ordinal
	}
	return idx
}

// Week returns the reference week with the given ordinal.
func (idx *Index) Week(ordinal int) (Week, error) {
	w, ok := idx.byOrdinal[ordinal]
	if !ok {
		return Week{}, fmt.Errorf("%w: ordinal %d", ErrWeekNotFound, ordinal)
	}
	return w, nil
}

// Ordinal resolves a week id to its ordinal.
func (idx *Index) Ordinal(id int64) (int, bool) {
	o, ok := idx.ordinals[id]
	return o, ok
}

// Len returns the number of indexed weeks.
func (idx *Index) Len() int {
	return len(idx.byOrdinal)
}

// YearWeeks generates the 52 reference weeks for year, labelled with their
// start and end dates. Week 1 starts on January 1st; week 52 runs to the
// end of the year.
func YearWeeks(year int) []Week {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	weeks := make([]Week, 0, WeeksPerYear)
	for i := 1; i <= WeeksPerYear; i++ {
		from := start.AddDate(0, 0, 7*(i-1))
		to := from.AddDate(0, 0, 6)
		if i == WeeksPerYear {
			to = time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
		}
		weeks = append(weeks, Week{
			Ordinal:    i,
			StartLabel: from.Format("2 Jan"),
			EndLabel:   to.Format("2 Jan"),
		})
	}
	return weeks
}
