package cli

import (
	"shiftmap-cli/internal/editor"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

type treeRow struct {
	Level      int    `json:"level"`
	Key        string `json:"key"`
	Value      any    `json:"value"`
	IsArray    bool   `json:"isArray,omitempty"`
	Expandable bool   `json:"expandable"`
	QID        string `json:"qid"`
	Anchor     string `json:"anchor"`
}

var dumpConfig = spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}

func newTreeCmd(app *App) *cobra.Command {
	var sideName string
	var dump bool

	cmd := &cobra.Command{
		Use:   "tree FILE",
		Short: "Print a document as flattened editor rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			side, err := editor.ParseSide(sideName)
			if err != nil {
				return writeErr(cmd, err)
			}
			v, err := loadDoc(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			ed := editor.New(side)
			ed.Load(v)

			if dump {
				nodes := ed.Store().Roots()
				dumpConfig.Fdump(cmd.OutOrStdout(), nodes)
				return nil
			}

			rows := make([]treeRow, 0, len(ed.All()))
			for _, f := range ed.All() {
				rows = append(rows, treeRow{
					Level:      f.Level,
					Key:        f.Key(),
					Value:      f.Item.Value,
					IsArray:    f.Item.IsArray,
					Expandable: f.Expandable,
					QID:        ed.QualifiedID(f),
					Anchor:     ed.ConnectorID(f),
				})
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"side":         string(side),
				"showAsLabels": ed.ShowAsLabels(),
				"rows":         rows,
			}})
		},
	}

	cmd.Flags().StringVar(&sideName, "side", "source", "Which pane to project as (source|dest)")
	cmd.Flags().BoolVar(&dump, "dump", false, "Dump the nested tree with go-spew")

	return cmd
}
