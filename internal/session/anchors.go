package session

import (
	"strings"

	"shiftmap-cli/internal/connector"
	"shiftmap-cli/internal/editor"
	"shiftmap-cli/internal/projector"
)

// RowAnchors resolves anchor ids against the rows the two editors currently
// show. A row's rect is its visible index on the Y axis with unit height.
type RowAnchors struct {
	Source *editor.Editor
	Dest   *editor.Editor
}

func (a RowAnchors) lookup(id string) (*editor.Editor, string) {
	switch {
	case strings.HasPrefix(id, connector.SourcePrefix):
		return a.Source, strings.TrimPrefix(id, connector.SourcePrefix)
	case strings.HasPrefix(id, connector.DestPrefix):
		return a.Dest, strings.TrimPrefix(id, connector.DestPrefix)
	}
	return nil, ""
}

func (a RowAnchors) RectOf(id string) (connector.Rect, bool) {
	ed, qid := a.lookup(id)
	if ed == nil || qid == "" {
		return connector.Rect{}, false
	}
	i := visibleIndex(ed, qid)
	if i < 0 {
		return connector.Rect{}, false
	}
	return connector.Rect{Y: i, Width: 1, Height: 1}, true
}

func (a RowAnchors) Exists(id string) bool {
	_, ok := a.RectOf(id)
	return ok
}

func visibleIndex(ed *editor.Editor, qid string) int {
	f, ok := ed.Find(qid)
	if !ok {
		return -1
	}
	return indexOf(ed.Rows(), f)
}

func indexOf(rows []*projector.FlatNode, f *projector.FlatNode) int {
	for i, r := range rows {
		if r == f {
			return i
		}
	}
	return -1
}

type nopLine struct{}

func (nopLine) Remove()   {}
func (nopLine) Position() {}

// NopRenderer accepts every draw and renders nothing (headless sessions).
type NopRenderer struct{}

func (NopRenderer) Draw(string, string, connector.Style) (connector.Line, error) {
	return nopLine{}, nil
}
