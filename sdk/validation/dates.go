package validation

import (
	"fmt"
	"time"
)

// DateLayout is the canonical calendar date format (YYYY-MM-DD).
const DateLayout = time.DateOnly

var flexibleDateLayouts = []string{
	time.DateOnly, // YYYY-MM-DD first so ISO input is never misread
	time.RFC3339,
	"2006/01/02",
	"01/02/2006", // MM/DD/YYYY
	"01-02-2006",
	"01/02/06",
	"02.01.2006", // DD.MM.YYYY
}

// ParseFlexibleDate parses a date written in one of the accepted layouts.
// The result is truncated to midnight UTC of that calendar day.
func ParseFlexibleDate(dateStr string) (time.Time, error) {
	for _, layout := range flexibleDateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %q", dateStr)
}

// NormalizeDate parses dateStr and re-formats it as YYYY-MM-DD.
func NormalizeDate(dateStr string) (string, error) {
	t, err := ParseFlexibleDate(dateStr)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// Today returns the calendar day of now in its own location, as midnight UTC.
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// OnOrAfter reports whether the calendar date d is not before the calendar
// day of now.
func OnOrAfter(d time.Time, now time.Time) bool {
	return !d.Before(Today(now))
}
