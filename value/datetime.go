package value

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// TimestampLayout is the text layout for timestamps in the run-results
// database. SQLite has no native date/time type; any text written with
// FormatTimestamp must be exactly recoverable by ParseDatetime.
const TimestampLayout = "2006-01-02 15:04:05.999999999"

// FormatTimestamp renders a timestamp for storage.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseDatetime extracts a datetime from input text.
//
// The store's own layout is tried first, then general parsing. Date portions
// sometimes arrive with underscores instead of hyphens (filename-derived
// stamps); those are retried with the separators corrected. Returns nil when
// no datetime can be extracted.
func ParseDatetime(value string) *time.Time {
	if value == "" {
		return nil
	}
	if t, err := time.ParseInLocation(TimestampLayout, value, time.Local); err == nil {
		return &t
	}
	if t, err := dateparse.ParseLocal(value); err == nil {
		return &t
	}
	if strings.Contains(value, "_") {
		return ParseDatetime(strings.ReplaceAll(value, "_", "-"))
	}
	return nil
}

// TruncateToDay returns the datetime truncated to midnight of its day.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MaxTime returns the latest of the given times, skipping nils. Returns nil
// when no non-nil time is given.
func MaxTime(times ...*time.Time) *time.Time {
	var latest *time.Time
	for _, t := range times {
		if t == nil {
			continue
		}
		if latest == nil || t.After(*latest) {
			latest = t
		}
	}
	return latest
}
