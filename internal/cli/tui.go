package cli

import (
	"path/filepath"

	"shiftmap-cli/internal/store"
	"shiftmap-cli/internal/tui"

	"github.com/spf13/cobra"
)

func runTUI(cmd *cobra.Command, app *App, source, dest string, journal bool) error {
	ctx := cmd.Context()
	src, err := loadDoc(ctx, source)
	if err != nil {
		return writeErr(cmd, err)
	}
	dst, err := loadDoc(ctx, dest)
	if err != nil {
		return writeErr(cmd, err)
	}

	var j *store.Journal
	if journal {
		j, err = openJournal(ctx, app)
		if err != nil {
			return writeErr(cmd, err)
		}
		defer j.Close()
	}

	return tui.Run(ctx, tui.Options{
		Name:    filepath.Base(source) + " -> " + filepath.Base(dest),
		Source:  src,
		Dest:    dst,
		Dwell:   app.cfg.ExpandDwell(),
		Journal: j,
		Theme:   app.cfg.Theme(),
		Glyphs:  app.cfg.Glyphs(),
	})
}
