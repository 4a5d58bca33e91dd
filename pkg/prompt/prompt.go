package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/huh"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/zeitbericht/zeitbericht/internal/utils"
	"github.com/zeitbericht/zeitbericht/pkg/render"
	"github.com/zeitbericht/zeitbericht/pkg/report"
)

const (
	actionGenerate     = "generate"
	actionChangeClient = "client"
	actionChangePeriod = "period"
	actionQuit         = "quit"
)

// Prompter walks the user through period, client and project selection on
// the terminal and writes the rendered report files.
type Prompter struct {
	service report.Service
	opts    render.Options
	format  render.Format
	outDir  string
	sidecar bool
	clock   utils.Clock
	in      io.Reader
	out     io.Writer
}

func New(service report.Service, opts render.Options, format render.Format, outDir string, sidecar bool) *Prompter {
	return &Prompter{
		service: service,
		opts:    opts,
		format:  format,
		outDir:  outDir,
		sidecar: sidecar,
		clock:   utils.SystemClock{},
		in:      os.Stdin,
		out:     os.Stdout,
	}
}

// Run drives the whole flow. Ctrl-C in any form ends the run without an
// error and without writing files.
func (p *Prompter) Run(ctx context.Context) error {
	err := p.run(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		fmt.Fprintln(p.out, "Aborted, no report written.")
		return nil
	}
	return err
}

func (p *Prompter) run(ctx context.Context) error {
	for {
		dataset, from, to, err := p.askPeriod(ctx)
		if err != nil {
			return err
		}
		restart, err := p.selectAndGenerate(dataset, from, to)
		if err != nil || !restart {
			return err
		}
	}
}

// selectAndGenerate runs the steps after the dataset is loaded. It returns
// true when the user wants to pick a new period.
func (p *Prompter) selectAndGenerate(dataset *report.Dataset, from, to time.Time) (bool, error) {
	for {
		clientName, err := p.askClient(dataset)
		if err != nil {
			return false, err
		}
		projects, err := p.askProjects(dataset, clientName)
		if err != nil {
			return false, err
		}
		selection, err := report.BuildSelection(dataset, from, to, clientName, projects)
		if err != nil {
			return false, err
		}
		selection, err = p.confirmRows(selection)
		if err != nil {
			return false, err
		}
		fmt.Fprint(p.out, overview(selection, p.opts.Language))

		action, err := p.askAction()
		if err != nil {
			return false, err
		}
		switch action {
		case actionGenerate:
			return false, p.writeReport(selection)
		case actionChangeClient:
			continue
		case actionChangePeriod:
			return true, nil
		case actionQuit:
			fmt.Fprintln(p.out, "No report written.")
			return false, nil
		}
	}
}

func (p *Prompter) askPeriod(ctx context.Context) (*report.Dataset, time.Time, time.Time, error) {
	for {
		var startRaw, endRaw string
		now := p.clock.Now()
		form := p.form(huh.NewGroup(
			huh.NewInput().
				Title("Start date").
				Description("Day first, e.g. 1-6, 01.06.2025 or 2025-06-01. The year defaults to the current one.").
				Value(&startRaw).
				Validate(func(s string) error {
					_, err := report.ParseStartOfDay(s, now)
					return err
				}),
			huh.NewInput().
				Title("End date").
				Value(&endRaw).
				Validate(func(s string) error {
					_, err := report.ParseEndOfDay(s, now)
					return err
				}),
		))
		if err := form.Run(); err != nil {
			return nil, time.Time{}, time.Time{}, err
		}
		from, err := report.ParseStartOfDay(startRaw, now)
		if err != nil {
			return nil, time.Time{}, time.Time{}, err
		}
		to, err := report.ParseEndOfDay(endRaw, now)
		if err != nil {
			return nil, time.Time{}, time.Time{}, err
		}
		if to.Before(from) {
			fmt.Fprintln(p.out, "The end date lies before the start date, try again.")
			continue
		}

		fmt.Fprintln(p.out, "Loading time entries...")
		dataset, err := p.service.Load(ctx, from, to)
		if err != nil {
			return nil, time.Time{}, time.Time{}, err
		}
		if len(dataset.Rows) == 0 {
			fmt.Fprintln(p.out, "No time entries in that period, pick another one.")
			continue
		}
		log.Debugf("loaded %d rows between %s and %s", len(dataset.Rows), from.Format("2006-01-02"), to.Format("2006-01-02"))
		return dataset, from, to, nil
	}
}

func (p *Prompter) askClient(dataset *report.Dataset) (string, error) {
	names := report.ClientNames(dataset.Rows)
	var clientName string
	form := p.form(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Client").
			Options(huh.NewOptions(names...)...).
			Value(&clientName),
	))
	if err := form.Run(); err != nil {
		return "", err
	}
	return clientName, nil
}

func (p *Prompter) askProjects(dataset *report.Dataset, clientName string) ([]string, error) {
	clientRows, _, err := report.FilterByClient(dataset.Rows, dataset.Clients, clientName)
	if err != nil {
		return nil, err
	}
	names := report.ProjectNames(clientRows)
	if len(names) == 1 {
		fmt.Fprintf(p.out, "%s has only the project %s, selecting it.\n", clientName, names[0])
		return names, nil
	}

	var all bool
	form := p.form(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Include all %d projects of %s?", len(names), clientName)).
			Value(&all),
	))
	if err := form.Run(); err != nil {
		return nil, err
	}
	if all {
		return []string{report.AllProjects}, nil
	}

	var picked []string
	form = p.form(huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title("Projects").
			Options(huh.NewOptions(names...)...).
			Value(&picked).
			Validate(func(selected []string) error {
				if len(selected) == 0 {
					return fmt.Errorf("pick at least one project")
				}
				return nil
			}),
	))
	if err := form.Run(); err != nil {
		return nil, err
	}
	return picked, nil
}

// confirmRows lets the user drop rows and append one manual row before the
// report is rendered.
func (p *Prompter) confirmRows(selection report.Selection) (report.Selection, error) {
	keepAll := true
	form := p.form(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Keep all %d rows?", len(selection.Rows))).
			Value(&keepAll),
	))
	if err := form.Run(); err != nil {
		return report.Selection{}, err
	}
	if !keepAll {
		kept, err := p.trimRows(selection.Rows)
		if err != nil {
			return report.Selection{}, err
		}
		selection.Rows = kept
	}

	var addManual bool
	form = p.form(huh.NewGroup(
		huh.NewConfirm().
			Title("Add a manual row?").
			Value(&addManual),
	))
	if err := form.Run(); err != nil {
		return report.Selection{}, err
	}
	if addManual {
		manual, err := p.askManualRow()
		if err != nil {
			return report.Selection{}, err
		}
		selection.Manual = manual
	}
	return selection, nil
}

func (p *Prompter) trimRows(rows []report.TimeEntry) ([]report.TimeEntry, error) {
	for {
		options := make([]huh.Option[int], 0, len(rows))
		for i, row := range rows {
			label := fmt.Sprintf("%s  %-40s %s h", row.Start.Format("2006-01-02"), row.Description, strconv.FormatFloat(row.DurationHours, 'f', 2, 64))
			options = append(options, huh.NewOption(label, i).Selected(true))
		}
		var keep []int
		form := p.form(huh.NewGroup(
			huh.NewMultiSelect[int]().
				Title("Rows to keep").
				Options(options...).
				Value(&keep),
		))
		if err := form.Run(); err != nil {
			return nil, err
		}
		if len(keep) == 0 {
			fmt.Fprintln(p.out, "A report needs at least one row.")
			continue
		}
		kept := make([]report.TimeEntry, 0, len(keep))
		for _, idx := range keep {
			kept = append(kept, rows[idx])
		}
		return kept, nil
	}
}

func (p *Prompter) askManualRow() (*report.ManualRow, error) {
	var description, hoursRaw string
	form := p.form(huh.NewGroup(
		huh.NewInput().
			Title("Description").
			Value(&description).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("description is required")
				}
				return nil
			}),
		huh.NewInput().
			Title("Hours").
			Description("e.g. 1.5 or 1,5").
			Value(&hoursRaw).
			Validate(func(s string) error {
				_, err := parseHours(s)
				return err
			}),
	))
	if err := form.Run(); err != nil {
		return nil, err
	}
	hours, err := parseHours(hoursRaw)
	if err != nil {
		return nil, err
	}
	return &report.ManualRow{
		Description:   strings.TrimSpace(description),
		DurationHours: hours,
	}, nil
}

func (p *Prompter) askAction() (string, error) {
	var action string
	form := p.form(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Next step").
			Options(
				huh.NewOption("Generate the report", actionGenerate),
				huh.NewOption("Change client or projects", actionChangeClient),
				huh.NewOption("Change the period", actionChangePeriod),
				huh.NewOption("Quit without a report", actionQuit),
			).
			Value(&action),
	))
	if err := form.Run(); err != nil {
		return "", err
	}
	return action, nil
}

func (p *Prompter) writeReport(selection report.Selection) error {
	files, err := render.WriteFiles(p.outDir, selection, p.opts, p.format, p.sidecar)
	if err != nil {
		return err
	}
	for _, file := range files {
		fmt.Fprintf(p.out, "Wrote %s\n", file)
	}
	return nil
}

func (p *Prompter) form(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).
		WithInput(p.in).
		WithOutput(p.out)
	// Accessible mode for non-TTY input (tests, piped input).
	if f, ok := p.in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}
	return form
}

// overview renders the pre-generation summary shown before the final action
// menu.
func overview(selection report.Selection, lang string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s", selection.ClientName)
	if selection.AllProjects {
		b.WriteString(" - all projects")
	} else if len(selection.Projects) > 0 {
		fmt.Fprintf(&b, " - %s", strings.Join(selection.Projects, ", "))
	}
	if label := report.PeriodLabel(selection.Rows, lang); label != "" {
		fmt.Fprintf(&b, " (%s)", label)
	}
	b.WriteString("\n\n")

	w := tabwriter.NewWriter(&b, 2, 0, 2, ' ', 0)
	for _, row := range selection.Rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			row.Start.Format("2006-01-02"), row.Description, row.TaskName,
			render.FormatHours(row.DurationHours, lang))
	}
	if selection.Manual != nil {
		fmt.Fprintf(w, "\t%s\t\t%s\n", selection.Manual.Description, render.FormatHours(selection.Manual.DurationHours, lang))
	}
	fmt.Fprintf(w, "\tTotal\t\t%s\n", render.FormatHours(selection.TotalHours(), lang))
	w.Flush()
	return b.String()
}

func parseHours(s string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	hours, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if hours <= 0 {
		return 0, fmt.Errorf("hours must be positive")
	}
	return hours, nil
}
