package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zeitbericht/zeitbericht/internal/app"
	"github.com/zeitbericht/zeitbericht/internal/config"
	"github.com/zeitbericht/zeitbericht/internal/utils"
	"github.com/zeitbericht/zeitbericht/pkg/clockify"
	"github.com/zeitbericht/zeitbericht/pkg/prompt"
	"github.com/zeitbericht/zeitbericht/pkg/render"
	"github.com/zeitbericht/zeitbericht/pkg/report"
)

var (
	cfgPath string
	cfg     config.Application
)

func init() {
	level := os.Getenv("LOG_LEVEL")
	if level != "" {
		logrusLevel, err := log.ParseLevel(level)
		if err != nil {
			log.Fatal(err)
		}
		log.SetLevel(logrusLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}
}

var rootCmd = &cobra.Command{
	Use:   "zeitbericht",
	Short: "Builds client-facing hour reports from Clockify time entries",
	Long: `Zeitbericht fetches time entries from a Clockify workspace and renders
them into a PDF or HTML report per client and project. Without a
subcommand it walks through the selection interactively.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		return err
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := workspaceService()
		if err != nil {
			return err
		}
		format, err := parseFormat(cfg.Output.Format)
		if err != nil {
			return err
		}
		p := prompt.New(service, renderOptions(), format, cfg.Output.Dir, cfg.Output.CSVSidecar)
		return p.Run(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web wizard",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.NewApplication(cfg)
		if err != nil {
			return err
		}
		return application.Run()
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a report without prompts",
	Long: `Generate builds one report from the configured (or flag-given) period,
client and projects. It is meant for scripted runs and exits non-zero
when the inputs do not match any time entries.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := workspaceService()
		if err != nil {
			return err
		}

		params := cfg.Report
		if cmd.Flags().Changed("start") {
			params.Start, _ = cmd.Flags().GetString("start")
		}
		if cmd.Flags().Changed("end") {
			params.End, _ = cmd.Flags().GetString("end")
		}
		if cmd.Flags().Changed("client") {
			params.Client, _ = cmd.Flags().GetString("client")
		}
		if cmd.Flags().Changed("project") {
			params.Projects, _ = cmd.Flags().GetStringArray("project")
		}
		if cmd.Flags().Changed("all-projects") {
			params.AllProjects, _ = cmd.Flags().GetBool("all-projects")
		}
		if params.Start == "" || params.End == "" {
			return fmt.Errorf("a start and an end date are required (--start/--end or report.start/report.end)")
		}
		if params.Client == "" {
			return fmt.Errorf("a client is required (--client or report.client)")
		}
		projects := params.Projects
		if params.AllProjects || len(projects) == 0 {
			projects = []string{report.AllProjects}
		}

		now := utils.SystemClock{}.Now()
		from, err := report.ParseStartOfDay(params.Start, now)
		if err != nil {
			return err
		}
		to, err := report.ParseEndOfDay(params.End, now)
		if err != nil {
			return err
		}
		if to.Before(from) {
			return fmt.Errorf("end date %s lies before start date %s", params.End, params.Start)
		}

		dataset, err := service.Load(cmd.Context(), from, to)
		if err != nil {
			return err
		}
		selection, err := report.BuildSelection(dataset, from, to, params.Client, projects)
		if err != nil {
			return describeSelectionError(err)
		}

		format, err := parseFormat(cfg.Output.Format)
		if err != nil {
			return err
		}
		files, err := render.WriteFiles(cfg.Output.Dir, selection, renderOptions(), format, cfg.Output.CSVSidecar)
		if err != nil {
			return err
		}
		for _, file := range files {
			fmt.Println(file)
		}
		return nil
	},
}

// describeSelectionError turns the pipeline errors into actionable CLI
// messages.
func describeSelectionError(err error) error {
	var notFound *report.NotFoundError
	if errors.As(err, &notFound) {
		return fmt.Errorf("%s %q not found, available: %s", notFound.Kind, notFound.Name, strings.Join(notFound.Available, ", "))
	}
	if errors.Is(err, report.ErrEmptyResult) {
		return fmt.Errorf("no time entries matched the given period, client and projects")
	}
	return err
}

func workspaceService() (report.Service, error) {
	if cfg.Clockify.APIKey == "" || cfg.Clockify.WorkspaceID == "" {
		return nil, fmt.Errorf("clockify.apikey and clockify.workspaceid must be configured")
	}
	api := clockify.NewHTTPClient(cfg.Clockify.BaseURL, cfg.Clockify.APIKey, cfg.Clockify.WorkspaceID)
	return report.NewService(api), nil
}

func renderOptions() render.Options {
	return render.Options{
		CompanyName: cfg.Company.Name,
		LogoPath:    cfg.Company.LogoPath,
		Language:    cfg.Language,
	}
}

func parseFormat(name string) (render.Format, error) {
	switch strings.ToLower(name) {
	case "", "pdf":
		return render.FormatPDF, nil
	case "html":
		return render.FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown output format %q, expected pdf or html", name)
	}
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to the configuration file")
	generateCmd.Flags().String("start", "", "start date, day first (e.g. 1-6 or 01.06.2025)")
	generateCmd.Flags().String("end", "", "end date, day first")
	generateCmd.Flags().String("client", "", "client name")
	generateCmd.Flags().StringArray("project", nil, "project name, repeatable")
	generateCmd.Flags().Bool("all-projects", false, "include all projects of the client")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
