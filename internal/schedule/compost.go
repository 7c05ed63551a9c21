package schedule

import "garden-guide/internal/variety"

// DueForCompost reports whether a variety has reached the end of its life
// in the target week.
//
// Annuals are due from the week after their harvest ends. The comparison is
// numeric with no wraparound, so a harvest ending late in the year keeps
// the plant growing through the early weeks of the next. Multi-year
// lifecycles are never composted by the weekly check.
func DueForCompost(lc variety.Lifecycle, harvestEnd, target int) bool {
	switch lc {
	case variety.Annual:
		return target > harvestEnd
	default:
		return false
	}
}
