package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"shiftmap-cli/internal/config"
	"shiftmap-cli/internal/doc"
	"shiftmap-cli/internal/format"
	"shiftmap-cli/internal/logging"
	"shiftmap-cli/internal/store"

	"github.com/spf13/cobra"
)

type App struct {
	PrettyJSON bool
	Format     string
	Journal    string
	Log        bool
	LogLevel   string

	cfg      config.Config
	closeLog func() error
}

func NewRootCmd() *cobra.Command {
	app := &App{}
	var source, dest string
	var noJournal bool

	cmd := &cobra.Command{
		Use:          "shiftmap",
		Short:        "Map one JSON/YAML document onto another by drawing field connectors",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the mapping TUI
  shiftmap --source person.json --dest customer.json

  # Inspect a document as the editor sees it
  shiftmap tree person.json

  # Headless mapping: replay drops and print the script
  shiftmap map --source person.json --dest customer.json --link name=address__street

  # Run a script
  shiftmap apply --script script.json person.json
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 && source != "" && dest != "" {
				return runTUI(cmd, app, source, dest, !noJournal)
			}
			if len(args) == 0 && (source != "" || dest != "") {
				return writeErr(cmd, usageError{msg: "the TUI needs both --source and --dest"})
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return writeErr(cmd, err)
		}
		app.cfg = cfg
		if !format.Valid(app.Format) {
			return writeErr(cmd, usageError{msg: fmt.Sprintf("unknown format: %s (json|edn|yaml)", app.Format)})
		}
		return initLogging(app)
	}

	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.closeLog != nil {
			return app.closeLog()
		}
		return nil
	}

	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("SHIFTMAP_FORMAT", "json"), "Output format (json|edn|yaml)")
	cmd.PersistentFlags().StringVar(&app.Journal, "journal", envOr("SHIFTMAP_JOURNAL", ""), "Session journal path (default: ~/.shiftmap/journal.sqlite)")
	cmd.PersistentFlags().BoolVar(&app.Log, "log", false, "Write a debug log to ~/.shiftmap/logs")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")

	cmd.Flags().StringVar(&source, "source", "", "Source document (path or URL)")
	cmd.Flags().StringVar(&dest, "dest", "", "Destination document (path or URL)")
	cmd.Flags().BoolVar(&noJournal, "no-journal", false, "Do not restore or record connectors")

	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newTreeCmd(app))
	cmd.AddCommand(newMapCmd(app))
	cmd.AddCommand(newApplyCmd(app))
	cmd.AddCommand(newSessionsCmd(app))

	return cmd
}

func initLogging(app *App) error {
	enabled := app.Log || app.cfg.Log.Enabled
	if !enabled {
		return nil
	}
	dir, err := app.cfg.LogDir()
	if err != nil {
		return err
	}
	level := app.cfg.Log.Level
	if app.LogLevel != "" {
		level = app.LogLevel
	} else if app.Log {
		level = "debug"
	}
	closer, err := logging.Init(logging.Options{Enabled: true, Dir: dir, Level: logging.ParseLevel(level)})
	if err != nil {
		return err
	}
	app.closeLog = closer
	return nil
}

func openJournal(ctx context.Context, app *App) (*store.Journal, error) {
	path := app.Journal
	if path == "" {
		p, err := app.cfg.JournalPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return store.Open(ctx, path)
}

func loadDoc(ctx context.Context, location string) (any, error) {
	if strings.TrimSpace(location) == "" {
		return nil, usageError{msg: "document path is required"}
	}
	return doc.Load(ctx, location)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
