package frequency

import (
	"math"
	"slices"

	"garden-guide/internal/calendar"
)

// Frequency is a named recurrence, expressed as occurrences per year.
// DefaultWeekdays is the weekday pattern copied onto a variety's own
// schedule when one is created with this frequency.
type Frequency struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	OccurrencesPerYear int    `json:"occurrences_per_year"`
	DefaultWeekdays    []int  `json:"default_weekdays,omitempty"`
}

// WeeksBetween converts occurrences per year into a weekly cadence.
//
// Counts of 52 or more fire every week. Zero or negative counts never fire
// and yield 0. Anything else is round(52/n) rounded half up, so 12/yr gives
// 4 and 8/yr (6.5) gives 7.
func WeeksBetween(occurrencesPerYear int) int {
	if occurrencesPerYear <= 0 {
		return 0
	}
	if occurrencesPerYear >= calendar.WeeksPerYear {
		return 1
	}
	weeks := int(math.Round(float64(calendar.WeeksPerYear) / float64(occurrencesPerYear)))
	return max(weeks, 1)
}

// FiresOn reports whether a schedule anchored at anchor fires on target.
// The anchor week itself always fires, then every WeeksBetween weeks.
func FiresOn(anchor, target, occurrencesPerYear int) bool {
	step := WeeksBetween(occurrencesPerYear)
	if step == 0 {
		return false
	}
	return calendar.DistanceForward(anchor, target)%step == 0
}

// Never reports whether the frequency can never fire.
func (f Frequency) Never() bool {
	return f.OccurrencesPerYear <= 0
}

// FiresOn reports whether f, anchored at anchor, fires on target.
func (f Frequency) FiresOn(anchor, target int) bool {
	return FiresOn(anchor, target, f.OccurrencesPerYear)
}

// OnWeekday reports whether d is one of the frequency's default weekdays.
func (f Frequency) OnWeekday(d int) bool {
	return slices.Contains(f.DefaultWeekdays, d)
}
