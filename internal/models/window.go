package models

import (
	"fmt"
	"time"
)

// ReleaseWindow is an inclusive range of calendar days used to decide playlist membership.
type ReleaseWindow struct {
	Start time.Time
	End   time.Time
}

// NewLookbackWindow returns the trailing window [today − days, today].
func NewLookbackWindow(today time.Time, days int) ReleaseWindow {
	today = Day(today)
	return ReleaseWindow{
		Start: today.AddDate(0, 0, -days),
		End:   today,
	}
}

// NewYearWindow returns the window [January 1 of today's year, today].
func NewYearWindow(today time.Time) ReleaseWindow {
	today = Day(today)
	return ReleaseWindow{
		Start: time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location()),
		End:   today,
	}
}

// Contains reports whether a release date falls inside the window, inclusive on both ends.
func (w ReleaseWindow) Contains(date time.Time) bool {
	d := Day(date)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Day truncates a time to its calendar day, preserving the location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseReleaseDate parses a release date string with the service's stated precision.
//
// Spotify reports release_date as "2006", "2006-01" or "2006-01-02" depending on
// release_date_precision. Coarser precisions resolve to the first day of the
// period so window comparisons stay well defined.
func ParseReleaseDate(date, precision string) (time.Time, error) {
	layout := "2006-01-02"
	switch precision {
	case "year":
		layout = "2006"
	case "month":
		layout = "2006-01"
	case "day", "":
		// Some responses omit the precision field; the full layout is the default.
	default:
		return time.Time{}, fmt.Errorf("unknown release date precision %q", precision)
	}

	t, err := time.ParseInLocation(layout, date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse release date %q: %w", date, err)
	}
	return t, nil
}
