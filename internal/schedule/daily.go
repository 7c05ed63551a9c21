package schedule

import (
	"garden-guide/internal/calendar"
	"garden-guide/internal/variety"
)

// FeedTask groups the varieties fed with one feed type on a day.
type FeedTask struct {
	FeedType  variety.FeedType  `json:"feed_type"`
	Varieties []variety.Summary `json:"varieties"`
}

// DayTasks holds the feeding and watering due on one weekday.
type DayTasks struct {
	Weekday calendar.Weekday  `json:"weekday"`
	Feed    []FeedTask        `json:"feed_tasks"`
	Water   []variety.Summary `json:"water_tasks"`
}

// DailyTasks maps weekday number (1..7) to that day's tasks. Every weekday
// has an entry.
type DailyTasks map[int]DayTasks

// Count returns the total number of feed and water entries.
func (dt DailyTasks) Count() int {
	n := 0
	for _, day := range dt {
		n += len(day.Water)
		for _, ft := range day.Feed {
			n += len(ft.Varieties)
		}
	}
	return n
}

// FeedDays maps a feed type id to the user's preferred weekday number.
type FeedDays map[int64]int

func newDailyTasks(weekdays []calendar.Weekday) DailyTasks {
	days := make(DailyTasks, calendar.DaysPerWeek)
	for _, wd := range calendar.DefaultWeekdays() {
		days[wd.Number] = DayTasks{Weekday: wd, Feed: []FeedTask{}, Water: []variety.Summary{}}
	}
	for _, wd := range weekdays {
		if day, ok := days[wd.Number]; ok {
			day.Weekday = wd
			days[wd.Number] = day
		}
	}
	return days
}

// Daily works out, for each weekday of the target week, which varieties
// need feeding (grouped by feed type) and which need watering.
func (d *Deriver) Daily(target int, varieties []variety.Facts, weekdays []calendar.Weekday, feedDays FeedDays) DailyTasks {
	days := newDailyTasks(weekdays)
	feedGroups := make(map[int]map[int64]int)
	watered := make(map[int]map[int64]bool)

	for _, v := range varieties {
		if day, ok := d.feedDay(v, target, feedDays); ok {
			dt := days[day]
			groups := feedGroups[day]
			if groups == nil {
				groups = make(map[int64]int)
				feedGroups[day] = groups
			}
			i, ok := groups[v.Feed.FeedType.ID]
			if !ok {
				i = len(dt.Feed)
				groups[v.Feed.FeedType.ID] = i
				dt.Feed = append(dt.Feed, FeedTask{FeedType: v.Feed.FeedType, Varieties: []variety.Summary{}})
			}
			dt.Feed[i].Varieties = append(dt.Feed[i].Varieties, v.Summary)
			days[day] = dt
		}

		if !d.watersThisWeek(v, target) {
			continue
		}
		for _, day := range v.Water.Weekdays {
			dt, ok := days[day]
			if !ok {
				continue
			}
			seen := watered[day]
			if seen == nil {
				seen = make(map[int64]bool)
				watered[day] = seen
			}
			if seen[v.ID] {
				continue
			}
			seen[v.ID] = true
			dt.Water = append(dt.Water, v.Summary)
			days[day] = dt
		}
	}
	return days
}

// feedDay returns the weekday v is fed on in the target week, if any.
func (d *Deriver) feedDay(v variety.Facts, target int, feedDays FeedDays) (int, bool) {
	if !d.usable(v, "feed", variety.FieldFeed) || v.Feed == nil {
		return 0, false
	}
	if !d.usable(v, "feed", variety.FieldLifecycle) {
		return 0, false
	}
	if !d.inFeedingPeriod(v, target) {
		return 0, false
	}
	if !v.Feed.Frequency.FiresOn(v.Feed.StartWeek, target) {
		return 0, false
	}
	day, ok := feedDays[v.Feed.FeedType.ID]
	if !ok || day < 1 || day > calendar.DaysPerWeek {
		return 0, false
	}
	return day, true
}

// inFeedingPeriod reports whether target lies in the variety's feeding
// period. Annuals feed from the feed start week through the end of
// harvest. Multi-year plants feed every year from the start week onward:
// a target before the start belongs to the following year's cycle, so
// only the lower bound applies and it always holds.
func (d *Deriver) inFeedingPeriod(v variety.Facts, target int) bool {
	if v.Lifecycle != variety.Annual {
		return true
	}
	if !d.usable(v, "feed", variety.FieldHarvest) {
		return false
	}
	_, harvestEnd, ok := v.Harvest.Bounds()
	if !ok {
		return false
	}
	return calendar.IsWithin(target, v.Feed.StartWeek, harvestEnd)
}

// watersThisWeek reports whether v is watered at all in the target week.
// Annuals are only watered between the start of sowing and the end of
// harvest.
func (d *Deriver) watersThisWeek(v variety.Facts, target int) bool {
	if !d.usable(v, "water", variety.FieldWater, variety.FieldLifecycle) {
		return false
	}
	if v.Water.Frequency.Never() {
		return false
	}
	if v.Lifecycle != variety.Annual {
		return true
	}
	if !d.usable(v, "water", variety.FieldSow, variety.FieldHarvest) {
		return false
	}
	sowStart, _, sowOK := v.Sow.Bounds()
	_, harvestEnd, harvestOK := v.Harvest.Bounds()
	if !sowOK || !harvestOK {
		return false
	}
	return calendar.IsWithin(target, sowStart, harvestEnd)
}
