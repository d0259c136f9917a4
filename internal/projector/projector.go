// Package projector derives the flat, level-annotated view of a tree that the
// panes render, and keeps the lookup tables between the two shapes.
package projector

import (
	"shiftmap-cli/internal/tree"
)

// FlatNode is the display projection of exactly one tree.Node. Item is shared
// with the node, not copied.
type FlatNode struct {
	Item       *tree.Item `json:"item"`
	Level      int        `json:"level"`
	Expandable bool       `json:"expandable"`

	// SelectConcat marks a source row picked for concatenation.
	SelectConcat bool `json:"-"`

	handle tree.Handle
}

// Handle is the handle of the node this row projects.
func (f *FlatNode) Handle() tree.Handle { return f.handle }

func (f *FlatNode) Key() string { return f.Item.Key }

// NodeMap is the pair of lookup tables between flat rows and nodes, both keyed
// by node handle. Each live node has at most one row and vice versa.
type NodeMap struct {
	nodes map[tree.Handle]*tree.Node
	flats map[tree.Handle]*FlatNode
}

func newNodeMap() *NodeMap {
	return &NodeMap{
		nodes: map[tree.Handle]*tree.Node{},
		flats: map[tree.Handle]*FlatNode{},
	}
}

// Node returns the nested node behind f.
func (m *NodeMap) Node(f *FlatNode) (*tree.Node, bool) {
	if f == nil {
		return nil, false
	}
	n, ok := m.nodes[f.handle]
	return n, ok
}

// Flat returns the row projecting n.
func (m *NodeMap) Flat(n *tree.Node) (*FlatNode, bool) {
	if n == nil {
		return nil, false
	}
	f, ok := m.flats[n.Handle()]
	return f, ok
}

func (m *NodeMap) Len() int { return len(m.flats) }

func (m *NodeMap) set(f *FlatNode, n *tree.Node) {
	m.nodes[n.Handle()] = n
	m.flats[n.Handle()] = f
}

func (m *NodeMap) evict(keep map[tree.Handle]bool) {
	for h := range m.flats {
		if !keep[h] {
			delete(m.flats, h)
			delete(m.nodes, h)
		}
	}
}

// Projector owns one NodeMap and the full flattened sequence of the most
// recently projected tree.
type Projector struct {
	m     *NodeMap
	flat  []*FlatNode
	roots []*tree.Node
}

func New() *Projector {
	return &Projector{m: newNodeMap()}
}

// Map exposes the lookup tables.
func (p *Projector) Map() *NodeMap { return p.m }

// Roots returns the tree last passed to Project.
func (p *Projector) Roots() []*tree.Node { return p.roots }

// Nodes returns every row of the last projection in document order, collapsed
// or not.
func (p *Projector) Nodes() []*FlatNode { return p.flat }

// Flatten returns the row for n at level. A row already mapped to this node
// (and still sharing its Item) is refreshed and reused so that per-row state
// survives re-projection.
func (p *Projector) Flatten(n *tree.Node, level int) *FlatNode {
	f, ok := p.m.flats[n.Handle()]
	if !ok || f.Item != n.Item {
		f = &FlatNode{handle: n.Handle()}
	}
	f.Item = n.Item
	f.Level = level
	f.Expandable = n.HasChildren()
	p.m.set(f, n)
	return f
}

// Project flattens roots depth-first and evicts rows whose nodes are gone.
func (p *Projector) Project(roots []*tree.Node) []*FlatNode {
	out := make([]*FlatNode, 0, len(p.flat))
	seen := map[tree.Handle]bool{}
	tree.Walk(roots, func(n *tree.Node, level int) bool {
		seen[n.Handle()] = true
		out = append(out, p.Flatten(n, level))
		return true
	})
	p.m.evict(seen)
	p.flat = out
	p.roots = roots
	return out
}

func Level(f *FlatNode) int { return f.Level }

func Expandable(f *FlatNode) bool { return f.Expandable }

// Children returns n's children, nil for leaves.
func Children(n *tree.Node) []*tree.Node { return n.Children }

// Index returns f's position in Nodes, or -1.
func (p *Projector) Index(f *FlatNode) int {
	for i, x := range p.flat {
		if x == f {
			return i
		}
	}
	return -1
}

// Parent finds f's parent row by scanning backwards for the first shallower row.
func (p *Projector) Parent(f *FlatNode) (*FlatNode, bool) {
	if f == nil || f.Level < 1 {
		return nil, false
	}
	for i := p.Index(f) - 1; i >= 0; i-- {
		if p.flat[i].Level < f.Level {
			return p.flat[i], true
		}
	}
	return nil, false
}

// Descendants returns every row nested under f, in order.
func (p *Projector) Descendants(f *FlatNode) []*FlatNode {
	i := p.Index(f)
	if i < 0 {
		return nil
	}
	var out []*FlatNode
	for _, x := range p.flat[i+1:] {
		if x.Level <= f.Level {
			break
		}
		out = append(out, x)
	}
	return out
}

// QualifiedID joins the keys from f's root down to f.
func (p *Projector) QualifiedID(f *FlatNode) string {
	if f == nil {
		return ""
	}
	if parent, ok := p.Parent(f); ok {
		return p.QualifiedID(parent) + Separator + f.Item.Key
	}
	return f.Item.Key
}

// FindByQualifiedID returns the row whose qualified id is qid.
func (p *Projector) FindByQualifiedID(qid string) (*FlatNode, bool) {
	for _, f := range p.flat {
		if p.QualifiedID(f) == qid {
			return f, true
		}
	}
	return nil, false
}

// AncestorChain returns n's ancestors root-first. There are no parent
// pointers, so each step rescans the whole tree: O(tree size) per level. That
// is the projector's scaling limit and is fine for document-sized trees.
func AncestorChain(roots []*tree.Node, n *tree.Node) []*tree.Node {
	var chain []*tree.Node
	cur := n
	for {
		parent := parentOf(roots, cur)
		if parent == nil {
			break
		}
		chain = append(chain, parent)
		cur = parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

func parentOf(roots []*tree.Node, n *tree.Node) *tree.Node {
	var found *tree.Node
	tree.Walk(roots, func(x *tree.Node, _ int) bool {
		for _, ch := range x.Children {
			if ch == n {
				found = x
				return false
			}
		}
		return true
	})
	return found
}

// QualifiedIDOf derives n's qualified id from the nested tree alone.
func QualifiedIDOf(roots []*tree.Node, n *tree.Node) string {
	keys := []string{}
	for _, a := range AncestorChain(roots, n) {
		keys = append(keys, a.Key())
	}
	return JoinID(append(keys, n.Key())...)
}
