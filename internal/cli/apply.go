package cli

import (
	"shiftmap-cli/internal/doc"
	"shiftmap-cli/internal/rules"

	"github.com/spf13/cobra"
)

func newApplyCmd(app *App) *cobra.Command {
	var scriptPath string
	var raw bool

	cmd := &cobra.Command{
		Use:   "apply --script SCRIPT INPUT",
		Short: "Run a shift script against a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := doc.ReadBytes(ctx, scriptPath)
			if err != nil {
				return writeErr(cmd, err)
			}
			script, err := rules.ParseScript(b)
			if err != nil {
				return writeErr(cmd, err)
			}
			input, err := loadDoc(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			out := rules.Apply(script, input)
			if raw {
				return writeOut(cmd, app, out)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}

	cmd.Flags().StringVar(&scriptPath, "script", "", "Script file (JSON or YAML)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the output document without the envelope")
	_ = cmd.MarkFlagRequired("script")

	return cmd
}
