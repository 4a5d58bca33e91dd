package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func rowsInMonths(dates ...time.Time) []TimeEntry {
	rows := make([]TimeEntry, 0, len(dates))
	for _, d := range dates {
		rows = append(rows, TimeEntry{Start: d, DurationHours: 1})
	}
	return rows
}

func TestPeriodLabel(t *testing.T) {
	tests := []struct {
		name  string
		dates []time.Time
		lang  string
		want  string
	}{
		{
			name:  "single month",
			dates: []time.Time{time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)},
			lang:  "de",
			want:  "Juni 2025",
		},
		{
			name:  "consecutive months merge into a run",
			dates: []time.Time{time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
			lang:  "de",
			want:  "Juni/Juli 2025",
		},
		{
			name: "gap month starts a new run",
			dates: []time.Time{
				time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
				time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
				time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
			},
			lang: "en",
			want: "January/February 2025, April 2025",
		},
		{
			name: "december and january never merge across years",
			dates: []time.Time{
				time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC),
				time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
			},
			lang: "en",
			want: "December 2024, January 2025",
		},
		{
			name: "german month names",
			dates: []time.Time{
				time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
				time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC),
				time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
			},
			lang: "de",
			want: "März/April 2025, Juni 2025",
		},
		{
			name:  "no rows",
			dates: nil,
			lang:  "de",
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PeriodLabel(rowsInMonths(tt.dates...), tt.lang))
		})
	}
}
