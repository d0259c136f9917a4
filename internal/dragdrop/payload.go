package dragdrop

import (
	"bytes"
	"encoding/json"
	"fmt"

	"shiftmap-cli/internal/projector"
	"shiftmap-cli/internal/tree"
)

// Payload is what a drag carries between panes. Every field is serialized
// text: the drop side may live in a different tree and shares no memory with
// the drag side.
type Payload struct {
	FlatMap    string `json:"flatMap"`
	DragNode   string `json:"dragNode"`
	DragNodeID string `json:"dragNodeId"`
}

// MalformedPayloadError is returned when a drop's payload cannot be decoded or
// resolved. No mutation is applied.
type MalformedPayloadError struct {
	Field  string
	Reason string
}

func (e MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed drag payload (%s): %s", e.Field, e.Reason)
}

type wireFlat struct {
	Item       tree.Item `json:"item"`
	Level      int       `json:"level"`
	Expandable bool      `json:"expandable"`
}

type wireNode struct {
	Item     tree.Item  `json:"item"`
	Children []wireNode `json:"children"`
}

type wireEntry struct {
	QID  string   `json:"qid,omitempty"`
	Flat wireFlat `json:"flat"`
	Node wireNode `json:"node"`
}

func toWireFlat(f *projector.FlatNode) wireFlat {
	return wireFlat{Item: *f.Item, Level: f.Level, Expandable: f.Expandable}
}

func toWireNode(n *tree.Node) wireNode {
	w := wireNode{Item: *n.Item}
	if n.Children != nil {
		w.Children = make([]wireNode, 0, len(n.Children))
		for _, ch := range n.Children {
			w.Children = append(w.Children, toWireNode(ch))
		}
	}
	return w
}

func (w wireNode) build() *tree.Node {
	n := tree.NewNode(w.Item.Key, w.Item.Value)
	n.Item.IsArray = w.Item.IsArray
	if w.Children != nil {
		n.Children = make([]*tree.Node, 0, len(w.Children))
		for _, ch := range w.Children {
			n.Children = append(n.Children, ch.build())
		}
	}
	return n
}

// NewPayload serializes p's whole flat map plus the dragged row.
func NewPayload(p *projector.Projector, f *projector.FlatNode) (Payload, error) {
	entries := make([]wireEntry, 0, len(p.Nodes()))
	for _, row := range p.Nodes() {
		n, ok := p.Map().Node(row)
		if !ok {
			continue
		}
		entries = append(entries, wireEntry{QID: p.QualifiedID(row), Flat: toWireFlat(row), Node: toWireNode(n)})
	}
	flatMap, err := json.Marshal(entries)
	if err != nil {
		return Payload{}, err
	}
	dragNode, err := json.Marshal(toWireFlat(f))
	if err != nil {
		return Payload{}, err
	}
	return Payload{
		FlatMap:    string(flatMap),
		DragNode:   string(dragNode),
		DragNodeID: p.QualifiedID(f),
	}, nil
}

// Marshal encodes the payload for an opaque transport.
func (p Payload) Marshal() ([]byte, error) { return json.Marshal(p) }

// UnmarshalPayload decodes a payload produced by Marshal.
func UnmarshalPayload(b []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(b, &p); err != nil {
		return Payload{}, MalformedPayloadError{Field: "payload", Reason: err.Error()}
	}
	return p, nil
}

func decodeStrict(field, s string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return MalformedPayloadError{Field: field, Reason: err.Error()}
	}
	return nil
}

// Resolve finds the dragged node inside the payload's flat map. Identity does
// not survive serialization, so the match is on the qualified id, falling back
// to key and level (first match wins) when no entry carries that id. The
// returned node is detached and safe to paste.
func (p Payload) Resolve() (*tree.Node, error) {
	if p.FlatMap == "" || p.DragNode == "" {
		return nil, MalformedPayloadError{Field: "payload", Reason: "empty"}
	}
	var entries []wireEntry
	if err := decodeStrict("flatMap", p.FlatMap, &entries); err != nil {
		return nil, err
	}
	var drag wireFlat
	if err := decodeStrict("dragNode", p.DragNode, &drag); err != nil {
		return nil, err
	}
	if p.DragNodeID != "" {
		for _, e := range entries {
			if e.QID == p.DragNodeID {
				return e.Node.build(), nil
			}
		}
	}
	for _, e := range entries {
		if e.Flat.Item.Key == drag.Item.Key && e.Flat.Level == drag.Level {
			return e.Node.build(), nil
		}
	}
	return nil, MalformedPayloadError{Field: "dragNode", Reason: fmt.Sprintf("key %q not in flat map", drag.Item.Key)}
}
