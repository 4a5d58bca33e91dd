package report

import (
	"sort"
	"strings"
	"time"

	"github.com/goodsign/monday"
)

type yearMonth struct {
	year  int
	month time.Month
}

// PeriodLabel renders the distinct months present in rows as a display
// string, e.g. "Juni 2025" or "März/April 2025, Juni 2025". Consecutive
// months within one year form a run; runs are joined by ", " in ascending
// order. Month names follow the given language tag, never the process
// locale.
func PeriodLabel(rows []TimeEntry, lang string) string {
	months := distinctMonths(rows)
	if len(months) == 0 {
		return ""
	}
	locale := localeFor(lang)

	var runs []string
	run := []yearMonth{months[0]}
	for _, ym := range months[1:] {
		last := run[len(run)-1]
		if ym.year == last.year && ym.month == last.month+1 {
			run = append(run, ym)
			continue
		}
		runs = append(runs, renderRun(run, locale))
		run = []yearMonth{ym}
	}
	runs = append(runs, renderRun(run, locale))
	return strings.Join(runs, ", ")
}

func renderRun(run []yearMonth, locale monday.Locale) string {
	names := make([]string, 0, len(run))
	for _, ym := range run {
		t := time.Date(ym.year, ym.month, 1, 0, 0, 0, 0, time.UTC)
		names = append(names, monday.Format(t, "January", locale))
	}
	return strings.Join(names, "/") + " " + monday.Format(time.Date(run[0].year, run[0].month, 1, 0, 0, 0, 0, time.UTC), "2006", locale)
}

func distinctMonths(rows []TimeEntry) []yearMonth {
	seen := make(map[yearMonth]bool)
	var months []yearMonth
	for _, row := range rows {
		ym := yearMonth{year: row.Start.Year(), month: row.Start.Month()}
		if !seen[ym] {
			seen[ym] = true
			months = append(months, ym)
		}
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].year != months[j].year {
			return months[i].year < months[j].year
		}
		return months[i].month < months[j].month
	})
	return months
}

func localeFor(lang string) monday.Locale {
	switch strings.ToLower(strings.SplitN(lang, "-", 2)[0]) {
	case "de":
		return monday.LocaleDeDE
	case "ru":
		return monday.LocaleRuRU
	case "nl":
		return monday.LocaleNlNL
	default:
		return monday.LocaleEnUS
	}
}
