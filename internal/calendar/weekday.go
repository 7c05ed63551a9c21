package calendar

import "time"

// Weekday is a day of the gardening week, numbered 1 (Monday) to 7 (Sunday).
type Weekday struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// DaysPerWeek is the number of weekdays every daily schedule covers.
const DaysPerWeek = 7

// DefaultWeekdays returns the ISO weekday list.
func DefaultWeekdays() []Weekday {
	return []Weekday{
		{Number: 1, Name: "Monday"},
		{Number: 2, Name: "Tuesday"},
		{Number: 3, Name: "Wednesday"},
		{Number: 4, Name: "Thursday"},
		{Number: 5, Name: "Friday"},
		{Number: 6, Name: "Saturday"},
		{Number: 7, Name: "Sunday"},
	}
}

// WeekdayNumber converts a time.Weekday to the 1..7 numbering.
func WeekdayNumber(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}
