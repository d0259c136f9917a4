package tui

import (
	"strings"

	"shiftmap-cli/internal/connector"
	"shiftmap-cli/internal/editor"

	"github.com/charmbracelet/lipgloss"
)

// gutter is the column between the two panes. It answers anchor lookups
// against the rows each pane shows on its current page and draws connector
// lines as box-drawing strokes from a source row to a destination row.
type gutter struct {
	source *editor.Editor
	dest   *editor.Editor

	// First visible row index of each pane and the rows per page.
	srcStart int
	dstStart int
	rows     int

	lines []*gutterLine
}

type gutterLine struct {
	g        *gutter
	from, to string
	style    connector.Style
	fromY    int
	toY      int
}

func (g *gutter) bind(source, dest *editor.Editor) {
	g.source = source
	g.dest = dest
}

// setPage records which rows each pane currently shows.
func (g *gutter) setPage(srcStart, dstStart, rows int) {
	g.srcStart = srcStart
	g.dstStart = dstStart
	g.rows = rows
}

func (g *gutter) side(id string) (*editor.Editor, string, int) {
	switch {
	case strings.HasPrefix(id, connector.SourcePrefix):
		return g.source, strings.TrimPrefix(id, connector.SourcePrefix), g.srcStart
	case strings.HasPrefix(id, connector.DestPrefix):
		return g.dest, strings.TrimPrefix(id, connector.DestPrefix), g.dstStart
	}
	return nil, "", 0
}

func (g *gutter) Exists(id string) bool {
	_, ok := g.RectOf(id)
	return ok
}

// RectOf places a row on its pane-relative line. Rows scrolled off the page
// are not rendered, so they have no rect.
func (g *gutter) RectOf(id string) (connector.Rect, bool) {
	ed, qid, start := g.side(id)
	if ed == nil || qid == "" {
		return connector.Rect{}, false
	}
	f, ok := ed.Find(qid)
	if !ok {
		return connector.Rect{}, false
	}
	for i, r := range ed.Rows() {
		if r != f {
			continue
		}
		if i < start || (g.rows > 0 && i >= start+g.rows) {
			return connector.Rect{}, false
		}
		x := 0
		if ed == g.dest {
			x = 1
		}
		return connector.Rect{X: x, Y: i - start, Width: 1, Height: 1}, true
	}
	return connector.Rect{}, false
}

func (g *gutter) Draw(from, to string, style connector.Style) (connector.Line, error) {
	l := &gutterLine{g: g, from: from, to: to, style: style}
	l.Position()
	g.lines = append(g.lines, l)
	return l, nil
}

func (l *gutterLine) Remove() {
	lines := l.g.lines
	for i, x := range lines {
		if x == l {
			l.g.lines = append(lines[:i:i], lines[i+1:]...)
			return
		}
	}
}

// Position keeps the last known rows when an anchor has gone away; the
// next redraw replaces the line anyway.
func (l *gutterLine) Position() {
	if r, ok := l.g.RectOf(l.from); ok {
		l.fromY = r.Y
	}
	if r, ok := l.g.RectOf(l.to); ok {
		l.toY = r.Y
	}
}

type gutterCell struct {
	ch     string
	approx bool
}

// View renders height lines of the given width.
func (g *gutter) View(width, height int) string {
	if width < 3 || height <= 0 {
		return ""
	}
	grid := make([][]gutterCell, height)
	for y := range grid {
		grid[y] = make([]gutterCell, width)
	}
	put := func(y, x int, ch string, approx bool) {
		if y < 0 || y >= height || x < 0 || x >= width {
			return
		}
		grid[y][x] = gutterCell{ch: ch, approx: approx}
	}

	st := strokes()
	for _, l := range g.lines {
		h, v := st.h, st.v
		if l.style.Dashed {
			h, v = st.hDashed, st.vDashed
		}
		approx := l.style.Dashed
		mid := width / 2
		for x := 0; x < mid; x++ {
			put(l.fromY, x, h, approx)
		}
		for x := mid + 1; x < width; x++ {
			put(l.toY, x, h, approx)
		}
		switch {
		case l.toY > l.fromY:
			put(l.fromY, mid, st.cornerDown, approx)
			for y := l.fromY + 1; y < l.toY; y++ {
				put(y, mid, v, approx)
			}
			put(l.toY, mid, st.cornerDownEnd, approx)
		case l.toY < l.fromY:
			put(l.fromY, mid, st.cornerUp, approx)
			for y := l.toY + 1; y < l.fromY; y++ {
				put(y, mid, v, approx)
			}
			put(l.toY, mid, st.cornerUpEnd, approx)
		default:
			put(l.fromY, mid, h, approx)
		}
		put(l.fromY, 0, plugGlyph(st, l.style.StartPlug, h), approx)
		put(l.toY, width-1, plugGlyph(st, l.style.EndPlug, h), approx)
	}

	exact := lipgloss.NewStyle().Foreground(colorLink)
	dashed := faintIfDark(lipgloss.NewStyle().Foreground(colorLinkApprox))
	out := make([]string, height)
	for y, row := range grid {
		var b strings.Builder
		for _, c := range row {
			switch {
			case c.ch == "":
				b.WriteByte(' ')
			case c.approx:
				b.WriteString(dashed.Render(c.ch))
			default:
				b.WriteString(exact.Render(c.ch))
			}
		}
		out[y] = b.String()
	}
	return strings.Join(out, "\n")
}

func plugGlyph(st strokeSet, p connector.Plug, stroke string) string {
	switch p {
	case connector.PlugSquare:
		return st.plugSquare
	case connector.PlugArrow:
		return st.plugArrow
	default:
		return stroke
	}
}

// connectorAt returns the index of the newest registered connector whose
// drawn line touches gutter line y.
func connectorAt(m *connector.Model, y int) (int, bool) {
	drawn := m.Connectors()
	for i := len(drawn) - 1; i >= 0; i-- {
		from, to, ok := m.Geometry(drawn[i])
		if !ok {
			continue
		}
		lo, hi := from.Y, to.Y
		if lo > hi {
			lo, hi = hi, lo
		}
		if y < lo || y > hi {
			continue
		}
		pairs := m.Pairs()
		for j := len(pairs) - 1; j >= 0; j-- {
			if pairs[j] == drawn[i].Pair {
				return j, true
			}
		}
	}
	return 0, false
}
