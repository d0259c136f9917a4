// Package tree holds the nested representation of a document: one Node per
// key/value position, owned by exactly one parent (or by the Store's root
// sequence).
package tree

import (
	"strconv"
	"sync/atomic"

	"shiftmap-cli/internal/doc"
)

// Handle is a stable identity assigned to a Node at creation. Lookup tables
// elsewhere key on it rather than on key/value equality.
type Handle uint64

var lastHandle atomic.Uint64

func nextHandle() Handle { return Handle(lastHandle.Add(1)) }

// Item is the key/value/isArray triple of a Node. Flat projections share the
// pointer, so edits are visible through either view.
type Item struct {
	Key     string `json:"key"`
	Value   any    `json:"value"`
	IsArray bool   `json:"isArray"`
}

// Node is one position in a document tree. Children is nil for leaves.
type Node struct {
	id       Handle
	Item     *Item
	Children []*Node
}

// NewNode allocates a detached node with a fresh handle.
func NewNode(key string, value any) *Node {
	return &Node{id: nextHandle(), Item: &Item{Key: key, Value: value}}
}

// Handle returns the node's identity.
func (n *Node) Handle() Handle {
	if n == nil {
		return 0
	}
	return n.id
}

func (n *Node) Key() string { return n.Item.Key }

func (n *Node) Value() any { return n.Item.Value }

// HasChildren reports whether the node currently has at least one child.
func (n *Node) HasChildren() bool { return n != nil && len(n.Children) > 0 }

// IsPlaceholder reports a freshly inserted node with neither value nor children.
func (n *Node) IsPlaceholder() bool {
	return n.Item.Value == nil && len(n.Children) == 0
}

// Clone deep-copies n and its descendants. Every copy gets a new handle.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{id: nextHandle(), Item: &Item{Key: n.Item.Key, Value: n.Item.Value, IsArray: n.Item.IsArray}}
	if n.Children != nil {
		c.Children = make([]*Node, 0, len(n.Children))
		for _, ch := range n.Children {
			c.Children = append(c.Children, ch.Clone())
		}
	}
	return c
}

// Build converts a document value into nodes. Object members become nodes in
// order; arrays mark the owning node IsArray and key elements by index.
// Scalars and nil produce no nodes.
func Build(v any) []*Node {
	switch t := v.(type) {
	case doc.Object:
		out := make([]*Node, 0, len(t))
		for _, m := range t {
			out = append(out, buildNode(m.Key, m.Value))
		}
		return out
	case []any:
		out := make([]*Node, 0, len(t))
		for i, e := range t {
			out = append(out, buildNode(strconv.Itoa(i), e))
		}
		return out
	default:
		return nil
	}
}

func buildNode(key string, v any) *Node {
	n := NewNode(key, nil)
	switch t := v.(type) {
	case nil:
	case doc.Object:
		n.Children = Build(t)
	case []any:
		n.Item.IsArray = true
		n.Children = Build(t)
	default:
		n.Item.Value = v
	}
	return n
}

// Materialize projects nodes back into a document value: an array when
// isArray, otherwise an Object. A node with a nil value and a children slice
// recurses; anything else contributes its value.
func Materialize(nodes []*Node, isArray bool) any {
	if isArray {
		out := make([]any, 0, len(nodes))
		for _, n := range nodes {
			out = append(out, materializeNode(n))
		}
		return out
	}
	out := make(doc.Object, 0, len(nodes))
	for _, n := range nodes {
		out.Set(n.Item.Key, materializeNode(n))
	}
	return out
}

func materializeNode(n *Node) any {
	if n.Item.Value == nil && n.Children != nil {
		return Materialize(n.Children, n.Item.IsArray)
	}
	return n.Item.Value
}

// Walk visits every node depth-first in document order. Returning false from
// fn stops the walk.
func Walk(nodes []*Node, fn func(n *Node, level int) bool) {
	walk(nodes, 0, fn)
}

func walk(nodes []*Node, level int, fn func(n *Node, level int) bool) bool {
	for _, n := range nodes {
		if !fn(n, level) {
			return false
		}
		if !walk(n.Children, level+1, fn) {
			return false
		}
	}
	return true
}
