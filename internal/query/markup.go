// Package query implements the C3 query planner: markup stripping,
// scope/temporal resolution, the strong-lexical-signal probe, and
// expansion into per-lane query sets.
package query

import (
	"strings"
	"time"
)

// Directives are the inline markup collected out of a raw query string
// before the remaining text is handed to the parser.
type Directives struct {
	Collection string
	Asof       *time.Time
	Before     *time.Time
	After      *time.Time
}

// StripMarkup removes @collection, asof:, before:, after: directives
// from raw, returning the cleaned remainder and the collected
// directives. Unparseable date values are left in place as ordinary
// words rather than silently dropped.
func StripMarkup(raw string) (cleaned string, dirs Directives) {
	var kept []string
	for _, word := range strings.Fields(raw) {
		switch {
		case strings.HasPrefix(word, "@") && len(word) > 1:
			dirs.Collection = word[1:]
		case strings.HasPrefix(word, "asof:"):
			if t, ok := parseFlexibleDate(strings.TrimPrefix(word, "asof:")); ok {
				dirs.Asof = &t
				continue
			}
			kept = append(kept, word)
		case strings.HasPrefix(word, "before:"):
			if t, ok := parseFlexibleDate(strings.TrimPrefix(word, "before:")); ok {
				dirs.Before = &t
				continue
			}
			kept = append(kept, word)
		case strings.HasPrefix(word, "after:"):
			if t, ok := parseFlexibleDate(strings.TrimPrefix(word, "after:")); ok {
				dirs.After = &t
				continue
			}
			kept = append(kept, word)
		default:
			kept = append(kept, word)
		}
	}
	return strings.TrimSpace(strings.Join(kept, " ")), dirs
}

func parseFlexibleDate(s string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02T15:04", s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), true
	}
	if t, ok := relativeDate(s); ok {
		return t, true
	}
	return time.Time{}, false
}
