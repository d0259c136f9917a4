package cli

import (
	"fmt"
	"strings"

	"shiftmap-cli/internal/dragdrop"
	"shiftmap-cli/internal/projector"
	"shiftmap-cli/internal/session"

	"github.com/spf13/cobra"
)

type link struct {
	source string
	dest   string
	zone   dragdrop.Zone
}

// parseLink reads SRC=DST with an optional @above/@below/@center suffix.
func parseLink(s string) (link, error) {
	l := link{zone: dragdrop.ZoneCenter}
	if i := strings.LastIndex(s, "@"); i >= 0 {
		switch strings.ToLower(s[i+1:]) {
		case "above":
			l.zone = dragdrop.ZoneAbove
		case "below":
			l.zone = dragdrop.ZoneBelow
		case "center":
		default:
			return link{}, usageError{msg: fmt.Sprintf("link %q: unknown zone %q (above|center|below)", s, s[i+1:])}
		}
		s = s[:i]
	}
	src, dst, ok := strings.Cut(s, "=")
	src, dst = strings.TrimSpace(src), strings.TrimSpace(dst)
	if !ok || src == "" || dst == "" {
		return link{}, usageError{msg: fmt.Sprintf("link %q: want SOURCE=DEST", s)}
	}
	l.source, l.dest = src, dst
	return l, nil
}

// zoneOffset is a pointer offset (in a unit-height row) inside zone.
func zoneOffset(z dragdrop.Zone) float64 {
	switch z {
	case dragdrop.ZoneAbove:
		return 0.1
	case dragdrop.ZoneBelow:
		return 0.9
	default:
		return 0.5
	}
}

// findRow accepts a qualified id (address__street) or a dot path
// (address.street).
func findRow(find func(string) (*projector.FlatNode, bool), id string) (*projector.FlatNode, bool) {
	if f, ok := find(id); ok {
		return f, true
	}
	if strings.Contains(id, ".") {
		return find(strings.ReplaceAll(id, ".", projector.Separator))
	}
	return nil, false
}

type connectorOut struct {
	Event       string `json:"event"`
	From        string `json:"from"`
	To          string `json:"to"`
	Approximate bool   `json:"approximate"`
}

func newMapCmd(app *App) *cobra.Command {
	var source, dest, name string
	var links []string
	var record bool

	cmd := &cobra.Command{
		Use:   "map --source FILE --dest FILE --link SRC=DST [--link ...]",
		Short: "Replay field drops headlessly and print the resulting script",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			parsed := make([]link, 0, len(links))
			for _, s := range links {
				l, err := parseLink(s)
				if err != nil {
					return writeErr(cmd, err)
				}
				parsed = append(parsed, l)
			}
			src, err := loadDoc(ctx, source)
			if err != nil {
				return writeErr(cmd, err)
			}
			dst, err := loadDoc(ctx, dest)
			if err != nil {
				return writeErr(cmd, err)
			}

			opts := session.Options{Name: name, Dwell: app.cfg.ExpandDwell()}
			if record {
				j, err := openJournal(ctx, app)
				if err != nil {
					return writeErr(cmd, err)
				}
				defer j.Close()
				opts.Journal = j
			}
			s := session.New(opts)
			s.Load(src, dst)
			if _, err := s.Restore(ctx); err != nil {
				return writeErr(cmd, err)
			}

			for _, l := range parsed {
				from, ok := findRow(s.Source.Find, l.source)
				if !ok {
					return writeErr(cmd, errNotFound("source field", l.source))
				}
				to, ok := findRow(s.Dest.Find, l.dest)
				if !ok {
					return writeErr(cmd, errNotFound("destination field", l.dest))
				}
				// Anchor misses are drawn approximately; only hard failures stop the replay.
				if _, err := s.Transfer(ctx, from, to, zoneOffset(l.zone), 1); err != nil && !isAnchorMiss(err) {
					return writeErr(cmd, err)
				}
			}

			conns := []connectorOut{}
			for _, c := range s.Connectors().Connectors() {
				conns = append(conns, connectorOut{Event: c.Pair.Event(), From: c.From, To: c.To, Approximate: c.Approximate})
			}
			data := map[string]any{
				"script":      s.Script(),
				"preview":     s.Preview(),
				"destination": s.Destination(),
				"connectors":  conns,
			}
			if rec := s.Record(); rec != nil {
				data["session"] = rec.ID
			}
			return writeOut(cmd, app, map[string]any{"data": data})
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Source document (path or URL)")
	cmd.Flags().StringVar(&dest, "dest", "", "Destination document (path or URL)")
	cmd.Flags().StringArrayVar(&links, "link", nil, "SOURCE=DEST[@above|@below] (qualified ids or dot paths; repeatable)")
	cmd.Flags().BoolVar(&record, "record", false, "Record the connectors in the session journal")
	cmd.Flags().StringVar(&name, "name", "", "Session name when recording")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("dest")

	return cmd
}
