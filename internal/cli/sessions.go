package cli

import (
	"encoding/json"
	"errors"

	"shiftmap-cli/internal/doc"
	"shiftmap-cli/internal/store"

	"github.com/spf13/cobra"
)

func newSessionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List journaled mapping sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listSessions(cmd, app)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List journaled mapping sessions (newest first)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listSessions(cmd, app)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show SESSION_ID",
		Short: "Show a session's connectors and script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			j, err := openJournal(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer j.Close()

			s, err := j.Session(ctx, args[0])
			if err != nil {
				var nf store.NotFoundError
				if errors.As(err, &nf) {
					return writeErr(cmd, errNotFound("session", args[0]))
				}
				return writeErr(cmd, err)
			}
			conns, err := j.Connectors(ctx, s.ID)
			if err != nil {
				return writeErr(cmd, err)
			}
			var script any = []any{}
			if body, ok, err := j.Script(ctx, s.ID); err != nil {
				return writeErr(cmd, err)
			} else if ok {
				if script, err = doc.Parse(body); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"session":    s,
				"connectors": conns,
				"script":     script,
			}})
		},
	})
	cmd.AddCommand(newSessionsExportCmd(app))
	cmd.AddCommand(newSessionsImportCmd(app))
	return cmd
}

func newSessionsExportCmd(app *App) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export SESSION_ID",
		Short: "Write a session backup as JSONL (stdout unless --out is set)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			j, err := openJournal(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer j.Close()

			recs, err := j.ExportSession(ctx, args[0])
			if err != nil {
				var nf store.NotFoundError
				if errors.As(err, &nf) {
					return writeErr(cmd, errNotFound("session", args[0]))
				}
				return writeErr(cmd, err)
			}
			if out == "" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				for _, r := range recs {
					if err := enc.Encode(r); err != nil {
						return writeErr(cmd, err)
					}
				}
				return nil
			}
			if err := store.WriteBackupJSONL(out, recs); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"session": args[0],
				"path":    out,
				"records": len(recs),
			}})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Backup file to write")
	return cmd
}

func newSessionsImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Restore a session backup, replacing a session with the same id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			recs, err := store.ReadBackupJSONL(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			j, err := openJournal(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer j.Close()

			s, err := j.ImportSession(ctx, recs)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": s})
		},
	}
}

func listSessions(cmd *cobra.Command, app *App) error {
	ctx := cmd.Context()
	j, err := openJournal(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer j.Close()
	ss, err := j.Sessions(ctx)
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, map[string]any{"data": ss})
}
