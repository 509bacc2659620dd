package query

import "time"

// relativeDate resolves a small set of relative date literals ("today",
// "yesterday", "last-week", "last-month", "ytd") against the current
// instant. ISO dates and datetimes are handled by parseFlexibleDate, not
// here. resolveRelative takes "now" as a parameter so tests stay
// deterministic.
func relativeDate(s string) (time.Time, bool) {
	return resolveRelative(s, time.Now().UTC())
}

func resolveRelative(s string, now time.Time) (time.Time, bool) {
	switch s {
	case "today":
		return truncateDay(now), true
	case "yesterday":
		return truncateDay(now.AddDate(0, 0, -1)), true
	case "last-week":
		return truncateDay(now.AddDate(0, 0, -7)), true
	case "last-month":
		y, m, d := now.Date()
		first := time.Date(y, m-1, 1, 0, 0, 0, 0, time.UTC)
		if last := first.AddDate(0, 1, -1).Day(); d > last {
			d = last
		}
		return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC), true
	case "ytd":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC), true
	default:
		return time.Time{}, false
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
