// Package schedule implements the pure scheduling algorithms behind the
// zone/time dispatch board: time arithmetic, conflict detection, bucket
// classification, and fractional ordering positions. Nothing in this
// package performs I/O.
package schedule

import (
	"math"
	"time"

	"github.com/SamShahinDev/dirtfree-crm-sub004/core/models"
)

// CombineDateTime combines a calendar date with an optional local time of
// day into a single instant in the date's location. A nil time defaults
// to start of day.
func CombineDateTime(date time.Time, t *models.TimeOfDay) time.Time {
	if t == nil {
		return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	}
	return t.On(date)
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching boundaries do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// WeekBounds returns the Sunday-start calendar week containing date:
// Sunday 00:00:00.000 through the following Saturday 23:59:59.999.
func WeekBounds(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	start = start.AddDate(0, 0, -int(start.Weekday()))
	end := start.AddDate(0, 0, 7).Add(-time.Millisecond)
	return start, end
}

// BusinessHours returns the policy's business window anchored on date.
func BusinessHours(date time.Time, p Policy) (time.Time, time.Time) {
	return p.BusinessStart.On(date), p.BusinessEnd.On(date)
}

// DurationMinutes returns the rounded minute difference between two instants.
func DurationMinutes(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}
