package rollup

import (
	"math"
	"time"

	"github.com/hollowoak/farmhand/internal/models"
)

// Cycle day-bucket math. All comparisons are date-granular: "now" is
// truncated to its UTC date so a cycle is current through the whole of
// its end date.

// DateOf truncates t to midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CycleTotalDays returns the inclusive day span of the cycle window.
func CycleTotalDays(c models.Cycle) int {
	start := DateOf(c.StartDate)
	end := DateOf(c.EndDate)
	return int(end.Sub(start).Hours()/24) + 1
}

// CycleDaysElapsed returns how many days of the window have passed,
// counting the current day, clamped to [0, total].
func CycleDaysElapsed(c models.Cycle, now time.Time) int {
	today := DateOf(now)
	start := DateOf(c.StartDate)
	total := CycleTotalDays(c)
	if today.Before(start) {
		return 0
	}
	elapsed := int(today.Sub(start).Hours()/24) + 1
	if elapsed > total {
		return total
	}
	return elapsed
}

// CycleDaysRemaining returns the days of the window still to come.
func CycleDaysRemaining(c models.Cycle, now time.Time) int {
	return CycleTotalDays(c) - CycleDaysElapsed(c, now)
}

// CycleIsCurrent reports whether now falls within [start, end] inclusive.
func CycleIsCurrent(c models.Cycle, now time.Time) bool {
	today := DateOf(now)
	return !today.Before(DateOf(c.StartDate)) && !today.After(DateOf(c.EndDate))
}

// CycleIsPast reports whether the window has fully passed.
func CycleIsPast(c models.Cycle, now time.Time) bool {
	return DateOf(now).After(DateOf(c.EndDate))
}

// CycleIsFuture reports whether the window has not started.
func CycleIsFuture(c models.Cycle, now time.Time) bool {
	return DateOf(now).Before(DateOf(c.StartDate))
}

// CycleDateProgress returns elapsed/total as a rounded percentage.
func CycleDateProgress(c models.Cycle, now time.Time) int {
	total := CycleTotalDays(c)
	if total == 0 {
		return 0
	}
	elapsed := CycleDaysElapsed(c, now)
	return int(math.Round(float64(elapsed) / float64(total) * 100))
}
