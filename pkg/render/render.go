package render

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Options carries the presentation parameters shared by all renderers.
type Options struct {
	CompanyName string
	LogoPath    string
	// Language is a BCP 47 tag ("de", "en", ...) driving month names,
	// table labels and the decimal separator.
	Language string
}

type labels struct {
	description string
	task        string
	date        string
	hours       string
	total       string
	dateLayout  string
}

func labelsFor(lang string) labels {
	switch strings.ToLower(strings.SplitN(lang, "-", 2)[0]) {
	case "de":
		return labels{
			description: "Beschreibung",
			task:        "Aufgabe",
			date:        "Datum",
			hours:       "Stunden",
			total:       "Gesamt",
			dateLayout:  "02.01.2006",
		}
	default:
		return labels{
			description: "Description",
			task:        "Task",
			date:        "Date",
			hours:       "Hours",
			total:       "Total",
			dateLayout:  "2006-01-02",
		}
	}
}

// FormatHours renders a duration with exactly two decimal digits and the
// locale's decimal separator ("8,25" for German, "8.25" for English).
func FormatHours(hours float64, lang string) string {
	printer := message.NewPrinter(language.Make(lang))
	return printer.Sprintf("%.2f", hours)
}
