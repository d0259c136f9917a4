package tui

import (
	"strings"
	"testing"

	"shiftmap-cli/internal/connector"
	"shiftmap-cli/internal/editor"

	xansi "github.com/charmbracelet/x/ansi"
)

func newGutter(t *testing.T, source, dest string) *gutter {
	t.Helper()
	src := editor.New(editor.Source)
	src.Load(parseDoc(t, source))
	dst := editor.New(editor.Dest)
	dst.Load(parseDoc(t, dest))
	g := &gutter{}
	g.bind(src, dst)
	return g
}

func TestGutterRectOf_HonorsPage(t *testing.T) {
	g := newGutter(t, `{"a": 1, "b": 2, "c": 3}`, `{"x": null}`)

	if r, ok := g.RectOf("sb"); !ok || r.Y != 1 {
		t.Fatalf("expected sb on line 1, got %+v ok=%v", r, ok)
	}
	if r, ok := g.RectOf("dx"); !ok || r.X != 1 || r.Y != 0 {
		t.Fatalf("expected dx on the right at line 0, got %+v ok=%v", r, ok)
	}

	g.setPage(1, 0, 1)
	if g.Exists("sa") || g.Exists("sc") {
		t.Fatalf("rows off the page must not resolve")
	}
	if r, ok := g.RectOf("sb"); !ok || r.Y != 0 {
		t.Fatalf("expected sb first on the page, got %+v ok=%v", r, ok)
	}
	if g.Exists("snope") || g.Exists("zb") {
		t.Fatalf("unknown ids must not resolve")
	}
}

func TestGutterRectOf_CollapsedRowsMissing(t *testing.T) {
	g := newGutter(t, `{"address": {"street": "s"}}`, `{}`)
	if g.Exists("saddress__street") {
		t.Fatalf("collapsed child must not resolve")
	}
	anchor, exact, ok := connector.Resolve(g, "saddress__street")
	if !ok || exact || anchor != "saddress" {
		t.Fatalf("expected ancestor substitution, got %q exact=%v ok=%v", anchor, exact, ok)
	}
}

func TestGutterDrawAndRemove(t *testing.T) {
	setGlyphs(glyphSetUnicode)
	g := newGutter(t, `{"a": 1, "b": 2}`, `{"x": null, "y": null}`)

	l, err := g.Draw("sa", "dy", connector.ExactStyle())
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	out := xansi.Strip(g.View(9, 3))
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "■") || !strings.Contains(lines[0], "┐") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[1], "└") || !strings.HasSuffix(lines[1], "■") {
		t.Fatalf("unexpected second line %q", lines[1])
	}
	if strings.TrimSpace(lines[2]) != "" {
		t.Fatalf("expected an empty third line, got %q", lines[2])
	}

	l.Remove()
	if len(g.lines) != 0 {
		t.Fatalf("expected the line to be removed")
	}
	if strings.TrimSpace(xansi.Strip(g.View(9, 3))) != "" {
		t.Fatalf("expected an empty gutter")
	}
}

func TestGutterApproximateUsesDashes(t *testing.T) {
	setGlyphs(glyphSetASCII)
	t.Cleanup(func() { setGlyphs(glyphSetUnicode) })
	g := newGutter(t, `{"a": 1}`, `{"x": null}`)
	if _, err := g.Draw("sa", "dx", connector.ApproximateStyle()); err != nil {
		t.Fatalf("draw: %v", err)
	}
	out := xansi.Strip(g.View(5, 1))
	if out != "#...#" {
		t.Fatalf("unexpected dashed line %q", out)
	}
}

func TestConnectorAt(t *testing.T) {
	g := newGutter(t, `{"a": 1, "b": 2}`, `{"x": null, "y": null}`)
	m := connector.NewModel(g, g)
	if err := m.Register(connector.NewPair("a", "x")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.Register(connector.NewPair("b", "y")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if i, ok := connectorAt(m, 1); !ok || i != 1 {
		t.Fatalf("expected connector 1 at line 1, got %d ok=%v", i, ok)
	}
	if i, ok := connectorAt(m, 0); !ok || i != 0 {
		t.Fatalf("expected connector 0 at line 0, got %d ok=%v", i, ok)
	}
	if _, ok := connectorAt(m, 5); ok {
		t.Fatalf("expected nothing at line 5")
	}
}
