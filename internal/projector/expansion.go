package projector

import "shiftmap-cli/internal/tree"

// Expansion tracks which rows are expanded, keyed by node handle so the state
// survives re-projection.
type Expansion struct {
	expanded map[tree.Handle]bool
}

func NewExpansion() *Expansion {
	return &Expansion{expanded: map[tree.Handle]bool{}}
}

func (e *Expansion) IsExpanded(f *FlatNode) bool { return f != nil && e.expanded[f.handle] }

func (e *Expansion) Expand(f *FlatNode) {
	if f != nil {
		e.expanded[f.handle] = true
	}
}

func (e *Expansion) Collapse(f *FlatNode) {
	if f != nil {
		delete(e.expanded, f.handle)
	}
}

func (e *Expansion) Toggle(f *FlatNode) {
	if e.IsExpanded(f) {
		e.Collapse(f)
		return
	}
	e.Expand(f)
}

func (e *Expansion) ExpandAll(rows []*FlatNode) {
	for _, f := range rows {
		if f.Expandable {
			e.expanded[f.handle] = true
		}
	}
}

func (e *Expansion) CollapseAll() {
	e.expanded = map[tree.Handle]bool{}
}

// ExpandDescendants expands f and every expandable row below it.
func (e *Expansion) ExpandDescendants(p *Projector, f *FlatNode) {
	e.Expand(f)
	e.ExpandAll(p.Descendants(f))
}

// Prune forgets state for rows no longer in p.
func (e *Expansion) Prune(p *Projector) {
	for h := range e.expanded {
		if _, ok := p.m.flats[h]; !ok {
			delete(e.expanded, h)
		}
	}
}

// Visible returns the rows a pane should render: every row whose ancestors
// are all expanded.
func (p *Projector) Visible(e *Expansion) []*FlatNode {
	out := make([]*FlatNode, 0, len(p.flat))
	hideBelow := -1
	for _, f := range p.flat {
		if hideBelow >= 0 {
			if f.Level > hideBelow {
				continue
			}
			hideBelow = -1
		}
		out = append(out, f)
		if f.Expandable && !e.IsExpanded(f) {
			hideBelow = f.Level
		}
	}
	return out
}
