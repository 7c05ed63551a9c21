package calendar

import (
	"errors"
	"testing"
	"time"
)

func TestIsWithin(t *testing.T) {
	t.Run("Wraparound", func(t *testing.T) {
		for _, week := range []int{50, 51, 52, 1, 5} {
			if !IsWithin(week, 50, 5) {
				t.Errorf("Expected week %d to be within 50..5", week)
			}
		}
		for _, week := range []int{6, 25, 49} {
			if IsWithin(week, 50, 5) {
				t.Errorf("Expected week %d to be outside 50..5", week)
			}
		}
	})

	t.Run("Plain", func(t *testing.T) {
		if !IsWithin(14, 14, 16) || !IsWithin(16, 14, 16) {
			t.Error("Expected range bounds to be inclusive")
		}
		if IsWithin(13, 14, 16) || IsWithin(17, 14, 16) {
			t.Error("Expected weeks outside 14..16 to be excluded")
		}
	})

	t.Run("SingleWeek", func(t *testing.T) {
		for week := 1; week <= WeeksPerYear; week++ {
			if got := IsWithin(week, 20, 20); got != (week == 20) {
				t.Errorf("IsWithin(%d, 20, 20) = %v", week, got)
			}
		}
	})
}

func TestDistanceForward(t *testing.T) {
	cases := []struct {
		from, to, want int
	}{
		{14, 14, 0},
		{14, 15, 1},
		{14, 28, 14},
		{50, 2, 4},
		{1, 52, 51},
		{52, 1, 1},
	}
	for _, c := range cases {
		if got := DistanceForward(c.from, c.to); got != c.want {
			t.Errorf("DistanceForward(%d, %d) = %d, want %d", c.from, c.to, got, c.want)
		}
	}

	for from := 1; from <= WeeksPerYear; from++ {
		for to := 1; to <= WeeksPerYear; to++ {
			if d := DistanceForward(from, to); d < 0 || d > 51 {
				t.Fatalf("DistanceForward(%d, %d) = %d out of range", from, to, d)
			}
		}
	}
}

func TestCurrentOrdinal(t *testing.T) {
	t.Run("MidYear", func(t *testing.T) {
		// 2026-10-14 is in ISO week 42.
		if got := CurrentOrdinal(time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)); got != 42 {
			t.Errorf("Expected week 42, got %d", got)
		}
	})

	t.Run("Week53FoldsTo52", func(t *testing.T) {
		// 2026-12-31 is in ISO week 53 of 2026.
		if got := CurrentOrdinal(time.Date(2026, time.December, 31, 12, 0, 0, 0, time.UTC)); got != 52 {
			t.Errorf("Expected week 52, got %d", got)
		}
	})
}

func TestIndex(t *testing.T) {
	weeks := YearWeeks(2026)
	for i := range weeks {
		weeks[i].ID = int64(100 + i)
	}
	idx := NewIndex(weeks)

	if idx.Len() != WeeksPerYear {
		t.Fatalf("Expected %d weeks, got %d", WeeksPerYear, idx.Len())
	}

	t.Run("Week", func(t *testing.T) {
		w, err := idx.Week(1)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if w.StartLabel != "1 Jan" || w.EndLabel != "7 Jan" {
			t.Errorf("Unexpected labels for week 1: %q - %q", w.StartLabel, w.EndLabel)
		}
		last, _ := idx.Week(52)
		if last.EndLabel != "31 Dec" {
			t.Errorf("Expected week 52 to end on 31 Dec, got %q", last.EndLabel)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		for _, ordinal := range []int{0, 53, -1} {
			if _, err := idx.Week(ordinal); !errors.Is(err, ErrWeekNotFound) {
				t.Errorf("Expected ErrWeekNotFound for ordinal %d, got %v", ordinal, err)
			}
		}
	})

	t.Run("Ordinal", func(t *testing.T) {
		if o, ok := idx.Ordinal(100); !ok || o != 1 {
			t.Errorf("Expected id 100 to resolve to week 1, got %d (%v)", o, ok)
		}
		if _, ok := idx.Ordinal(1); ok {
			t.Error("Expected id 1 to be unknown")
		}
	})
}

func TestWeekdayNumber(t *testing.T) {
	if WeekdayNumber(time.Monday) != 1 || WeekdayNumber(time.Sunday) != 7 {
		t.Error("Expected Monday=1 and Sunday=7")
	}
	if len(DefaultWeekdays()) != DaysPerWeek {
		t.Errorf("Expected %d default weekdays", DaysPerWeek)
	}
}
