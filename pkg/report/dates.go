package report

import (
	"strings"
	"time"
)

// dateLayouts are probed in order. Day-first forms come from how operators
// type periods by hand; Y-M-D is accepted for completeness.
var dateLayouts = []struct {
	layout  string
	hasYear bool
}{
	{"2-1-2006", true},
	{"2-1", false},
	{"2.1.2006", true},
	{"2.1", false},
	{"2/1/2006", true},
	{"2006-1-2", true},
}

// ParseStartOfDay parses a flexible date string and snaps it to 00:00:00 UTC.
// A string without a year defaults to the year of now.
func ParseStartOfDay(input string, now time.Time) (time.Time, error) {
	return parseDayBoundary(input, now, false)
}

// ParseEndOfDay parses a flexible date string and snaps it to 23:59:59 UTC,
// so that for one calendar day the start boundary is strictly earlier.
func ParseEndOfDay(input string, now time.Time) (time.Time, error) {
	return parseDayBoundary(input, now, true)
}

func parseDayBoundary(input string, now time.Time, end bool) (time.Time, error) {
	trimmed := strings.TrimSpace(input)
	for _, candidate := range dateLayouts {
		parsed, err := time.Parse(candidate.layout, trimmed)
		if err != nil {
			continue
		}
		year := parsed.Year()
		if !candidate.hasYear {
			year = now.Year()
		}
		day := time.Date(year, parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
		// time.Date normalizes overflow, so a Feb 29 carried into a
		// non-leap year would silently become Mar 1. Reject instead.
		if day.Month() != parsed.Month() || day.Day() != parsed.Day() {
			return time.Time{}, &FormatError{Input: input}
		}
		if end {
			return day.Add(24*time.Hour - time.Second), nil
		}
		return day, nil
	}
	return time.Time{}, &FormatError{Input: input}
}
