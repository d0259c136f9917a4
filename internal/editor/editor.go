// Package editor is one side of the mapping view: a tree store with its flat
// projection, expansion state, selection, copy buffer, undo slot and drag
// controller.
package editor

import (
	"fmt"

	"shiftmap-cli/internal/connector"
	"shiftmap-cli/internal/doc"
	"shiftmap-cli/internal/dragdrop"
	"shiftmap-cli/internal/projector"
	"shiftmap-cli/internal/tree"
)

type Side string

const (
	Source Side = "source"
	Dest   Side = "dest"
)

// ParseSide accepts "source"/"src" and "dest"/"destination".
func ParseSide(s string) (Side, error) {
	switch s {
	case "source", "src", "":
		return Source, nil
	case "dest", "destination", "dst":
		return Dest, nil
	default:
		return "", fmt.Errorf("unknown side %q (want source|dest)", s)
	}
}

// Prefix is the anchor prefix for rows on this side.
func (s Side) Prefix() string {
	if s == Dest {
		return connector.DestPrefix
	}
	return connector.SourcePrefix
}

// OperationKey names the placeholder child added under new items.
const OperationKey = "operation"

type Editor struct {
	side  Side
	store *tree.Store
	proj  *projector.Projector
	exp   *projector.Expansion
	drag  *dragdrop.Controller
	undo  tree.UndoLog

	rows      []*projector.FlatNode
	selected  map[tree.Handle]bool
	copied    *tree.Node
	rootArray bool
	labels    bool
	collapsed bool

	restructure []func()
}

func New(side Side, opts ...dragdrop.Option) *Editor {
	e := &Editor{
		side:      side,
		store:     tree.NewStore(),
		proj:      projector.New(),
		exp:       projector.NewExpansion(),
		drag:      dragdrop.NewController(opts...),
		selected:  map[tree.Handle]bool{},
		collapsed: true,
	}
	e.store.Subscribe(e.reproject)
	return e
}

func (e *Editor) reproject(roots []*tree.Node) {
	e.rows = e.proj.Project(roots)
	e.exp.Prune(e.proj)
	live := make(map[tree.Handle]bool, len(e.rows))
	for _, f := range e.rows {
		live[f.Handle()] = true
	}
	for h := range e.selected {
		if !live[h] {
			delete(e.selected, h)
		}
	}
}

func (e *Editor) Side() Side                       { return e.side }
func (e *Editor) Store() *tree.Store               { return e.store }
func (e *Editor) Projector() *projector.Projector  { return e.proj }
func (e *Editor) Expansion() *projector.Expansion  { return e.exp }
func (e *Editor) Controller() *dragdrop.Controller { return e.drag }

// ShowAsLabels reports that the loaded document was a list of scalars,
// shown as one label row per element.
func (e *Editor) ShowAsLabels() bool { return e.labels }

// RootIsArray reports whether Value materializes to a list.
func (e *Editor) RootIsArray() bool { return e.rootArray }

// Load replaces the tree with v.
func (e *Editor) Load(v any) {
	e.labels = false
	e.rootArray = false
	e.copied = nil
	e.undo = tree.UndoLog{}
	e.selected = map[tree.Handle]bool{}
	e.exp.CollapseAll()
	e.collapsed = true

	if list, ok := v.([]any); ok {
		if labels, ok := labelObject(list); ok {
			e.labels = true
			v = labels
		} else {
			e.rootArray = true
		}
	}
	e.store.Load(v)
	e.restructured()
}

// labelObject turns a list of scalars into {elem: null, ...}.
func labelObject(list []any) (doc.Object, bool) {
	if len(list) == 0 {
		return nil, false
	}
	out := doc.Object{}
	for _, el := range list {
		if doc.IsContainer(el) {
			return nil, false
		}
		out.Set(fmt.Sprint(el), nil)
	}
	return out, true
}

// Value materializes the current tree.
func (e *Editor) Value() any {
	return tree.Materialize(e.store.Roots(), e.rootArray)
}

// All returns every row, visible or not.
func (e *Editor) All() []*projector.FlatNode { return e.rows }

// Rows returns the rows to render, honoring expansion.
func (e *Editor) Rows() []*projector.FlatNode { return e.proj.Visible(e.exp) }

// Node returns the tree node behind row f.
func (e *Editor) Node(f *projector.FlatNode) (*tree.Node, error) {
	n, ok := e.proj.Map().Node(f)
	if !ok {
		var h tree.Handle
		if f != nil {
			h = f.Handle()
		}
		return nil, tree.NotFoundError{Kind: "row", Handle: h}
	}
	return n, nil
}

// Row returns the row for n.
func (e *Editor) Row(n *tree.Node) (*projector.FlatNode, bool) {
	return e.proj.Map().Flat(n)
}

// Find returns the row with the given qualified id.
func (e *Editor) Find(qid string) (*projector.FlatNode, bool) {
	return e.proj.FindByQualifiedID(qid)
}

func (e *Editor) QualifiedID(f *projector.FlatNode) string { return e.proj.QualifiedID(f) }

// ConnectorID is the anchor id of f: its qualified id with the side prefix.
func (e *Editor) ConnectorID(f *projector.FlatNode) string {
	return e.side.Prefix() + e.proj.QualifiedID(f)
}

// OnRestructure registers fn to run after anything that moves rows on screen
// (expand, collapse, reload).
func (e *Editor) OnRestructure(fn func()) {
	e.restructure = append(e.restructure, fn)
}

func (e *Editor) restructured() {
	for _, fn := range e.restructure {
		fn()
	}
}

func (e *Editor) IsExpanded(f *projector.FlatNode) bool { return e.exp.IsExpanded(f) }

func (e *Editor) Expand(f *projector.FlatNode) {
	e.exp.Expand(f)
	e.restructured()
}

func (e *Editor) Collapse(f *projector.FlatNode) {
	e.exp.Collapse(f)
	e.restructured()
}

func (e *Editor) ToggleExpand(f *projector.FlatNode) {
	if f == nil || !f.Expandable {
		return
	}
	e.exp.Toggle(f)
	e.restructured()
}

// ToggleCollapse flips between everything collapsed and everything expanded.
// It reports the new collapsed state.
func (e *Editor) ToggleCollapse() bool {
	e.collapsed = !e.collapsed
	if e.collapsed {
		e.exp.CollapseAll()
	} else {
		e.exp.ExpandAll(e.rows)
	}
	e.restructured()
	return e.collapsed
}
