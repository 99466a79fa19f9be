package utils

import (
	"strconv"
	"time"

	"github.com/kelsos/atom-tasks/internal/models"
)

// DateUnavailable is shown for tasks without a usable creation time
const DateUnavailable = "Date not available"

// FormatDate renders ts as a short local date, e.g. "12 Apr 2025"
func FormatDate(ts models.Timestamp) string {
	if !ts.Valid() {
		return DateUnavailable
	}
	return ts.Time.Local().Format("2 Jan 2006")
}

// FormatAge renders how long ago t was, relative to now, in the largest
// whole unit.
func FormatAge(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	default:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}
