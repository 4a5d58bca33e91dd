package render

import (
	"bytes"
	"html/template"

	"github.com/zeitbericht/zeitbericht/pkg/report"
)

const htmlTemplate = `<!DOCTYPE html>
<html lang="{{ .Lang }}">
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
<link rel="stylesheet" href="{{ .CSSName }}">
</head>
<body>
<header>
  <h1>{{ .CompanyName }}</h1>
  {{ if .LogoPath }}<img class="logo" src="{{ .LogoPath }}" alt="logo">{{ end }}
</header>
<h2>{{ .Period }}</h2>
<table>
  <thead>
    <tr><th>{{ .Labels.Description }}</th><th>{{ .Labels.Task }}</th><th>{{ .Labels.Date }}</th><th class="num">{{ .Labels.Hours }}</th></tr>
  </thead>
  <tbody>
    {{- range .Rows }}
    <tr><td>{{ .Description }}</td><td>{{ .Task }}</td><td>{{ .Date }}</td><td class="num">{{ .Hours }}</td></tr>
    {{- end }}
  </tbody>
  <tfoot>
    <tr><td colspan="3">{{ .Labels.Total }}</td><td class="num">{{ .Total }}</td></tr>
  </tfoot>
</table>
</body>
</html>
`

const htmlStylesheet = `body { font-family: "Helvetica Neue", Arial, sans-serif; color: #2c3e50; margin: 2rem; }
header { display: flex; justify-content: space-between; align-items: center; }
header img.logo { max-height: 60px; }
table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
th, td { border: 1px solid #bdc3c7; padding: 0.4rem 0.6rem; text-align: left; }
thead th { background: #ecf0f1; }
tfoot td { font-weight: bold; background: #ecf0f1; }
td.num, th.num { text-align: right; }
@media print { body { margin: 0; } }
`

type htmlLabels struct {
	Description string
	Task        string
	Date        string
	Hours       string
	Total       string
}

type htmlRow struct {
	Description string
	Task        string
	Date        string
	Hours       string
}

type htmlData struct {
	Lang        string
	Title       string
	CSSName     string
	CompanyName string
	LogoPath    string
	Period      string
	Labels      htmlLabels
	Rows        []htmlRow
	Total       string
}

// HTML renders the selection as an HTML document plus a CSS stylesheet. The
// cssName is written into the document's stylesheet link.
func HTML(sel report.Selection, opts Options, cssName string) ([]byte, []byte, error) {
	lb := labelsFor(opts.Language)

	rows := make([]htmlRow, 0, len(sel.Rows)+1)
	for _, row := range sel.Rows {
		rows = append(rows, htmlRow{
			Description: row.Description,
			Task:        row.TaskName,
			Date:        row.Start.Format(lb.dateLayout),
			Hours:       FormatHours(row.DurationHours, opts.Language),
		})
	}
	if sel.Manual != nil {
		rows = append(rows, htmlRow{
			Description: sel.Manual.Description,
			Hours:       FormatHours(sel.Manual.DurationHours, opts.Language),
		})
	}

	data := htmlData{
		Lang:        opts.Language,
		Title:       report.Filename(sel),
		CSSName:     cssName,
		CompanyName: opts.CompanyName,
		LogoPath:    opts.LogoPath,
		Period:      report.PeriodLabel(sel.Rows, opts.Language),
		Labels: htmlLabels{
			Description: lb.description,
			Task:        lb.task,
			Date:        lb.date,
			Hours:       lb.hours,
			Total:       lb.total,
		},
		Rows:  rows,
		Total: FormatHours(sel.TotalHours(), opts.Language),
	}

	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return nil, nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), []byte(htmlStylesheet), nil
}
