// Package seasonal decides whether a configured seasonal tag (e.g.
// "Halloween", Oct 15 - Oct 31) is active on a given date. Windows recur
// annually and may wrap across year-end.
package seasonal

import (
	"strings"
	"time"

	"marquee/models"
)

// IsActive reports whether today falls inside the tag's annual window,
// boundaries inclusive. Windows whose start falls after their end (e.g.
// Dec 1 - Jan 6) wrap across year-end.
func IsActive(tag models.SeasonalTag, today time.Time) bool {
	start := dayOfYear(today.Year(), tag.StartMonth, tag.StartDay, today.Location())
	end := dayOfYear(today.Year(), tag.EndMonth, tag.EndDay, today.Location())
	day := today.YearDay()

	if start <= end {
		return day >= start && day <= end
	}
	// Wrap-around window.
	return day >= start || day <= end
}

// ActiveNames returns the lowercased names of all tags active today.
func ActiveNames(tags []models.SeasonalTag, today time.Time) map[string]bool {
	active := make(map[string]bool, len(tags))
	for _, tag := range tags {
		if IsActive(tag, today) {
			active[strings.ToLower(tag.Name)] = true
		}
	}
	return active
}

// dayOfYear builds the boundary's day-of-year in the evaluation year. The
// day is clamped to the month's length so a Feb 29 boundary degrades to
// Feb 28 in non-leap years instead of rolling into March.
func dayOfYear(year, month, day int, loc *time.Location) int {
	if month < 1 {
		month = 1
	} else if month > 12 {
		month = 12
	}
	if day < 1 {
		day = 1
	}
	if last := lastDayOfMonth(year, month, loc); day > last {
		day = last
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc).YearDay()
}

func lastDayOfMonth(year, month int, loc *time.Location) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, loc).Day()
}
