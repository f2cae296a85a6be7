package utils

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// providerLayouts are tried in order when reading dates produced by the upstream provider.
var providerLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"20060102",
}

func ParseDate(dateStr string) (time.Time, error) {
	return time.Parse(DateLayout, dateStr)
}

// ParseFlexibleDate accepts any of the provider layouts and truncates the result to the day.
func ParseFlexibleDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	for _, layout := range providerLayouts {
		if date, err := time.Parse(layout, dateStr); err == nil {
			return truncateDay(date), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date format: %q", dateStr)
}

// WithinRange reports whether date falls on or between start and end, compared by calendar day.
func WithinRange(date, start, end time.Time) bool {
	day := truncateDay(date)
	return !day.Before(truncateDay(start)) && !day.After(truncateDay(end))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
