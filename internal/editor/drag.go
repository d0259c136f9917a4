package editor

import (
	"shiftmap-cli/internal/connector"
	"shiftmap-cli/internal/dragdrop"
	"shiftmap-cli/internal/logging"
	"shiftmap-cli/internal/projector"
	"shiftmap-cli/internal/tree"
)

// DropResult is what a drop produced on the receiving side.
type DropResult struct {
	// Node is the node that now carries the dropped data: the target itself
	// for a center drop, the new sibling otherwise.
	Node *tree.Node
	Zone dragdrop.Zone
	Pair connector.Pair
}

// Event is the connector registration event of the drop.
func (r DropResult) Event() string { return r.Pair.Event() }

// DragStart picks up row and returns the payload to hand to the drop side.
func (e *Editor) DragStart(row *projector.FlatNode) (dragdrop.Payload, error) {
	if _, err := e.Node(row); err != nil {
		return dragdrop.Payload{}, err
	}
	return e.drag.Start(e.proj, row)
}

// DragOver classifies a pointer at offsetY within a row of the given height.
func (e *Editor) DragOver(row *projector.FlatNode, offsetY, height float64) dragdrop.Hover {
	h := e.drag.Over(row, offsetY, height, e.exp)
	if h.Expanded {
		e.restructured()
	}
	return h
}

// Drop lands payload on row. A center drop writes the dragged key into row's
// value; above/below copy the dragged subtree in as a sibling. The returned
// pair links the dragged id to whichever node received the data. A malformed
// payload aborts without touching the tree.
func (e *Editor) Drop(row *projector.FlatNode, payload dragdrop.Payload) (DropResult, error) {
	target, err := e.Node(row)
	if err != nil {
		e.drag.End()
		return DropResult{}, err
	}
	d, err := e.drag.Drop(payload)
	if err != nil {
		logging.Warn("drop aborted", "side", string(e.side), "err", err)
		return DropResult{}, err
	}

	var n *tree.Node
	switch d.Zone {
	case dragdrop.ZoneAbove:
		n, err = e.store.CopySubtreeAbove(d.Node, target)
	case dragdrop.ZoneBelow:
		n, err = e.store.CopySubtreeBelow(d.Node, target)
	default:
		n, err = e.store.CopyValueOnly(d.Node, target)
	}
	if err != nil {
		return DropResult{}, err
	}

	f, ok := e.Row(n)
	if !ok {
		return DropResult{}, tree.NotFoundError{Kind: "row", Handle: n.Handle()}
	}
	res := DropResult{Node: n, Zone: d.Zone, Pair: connector.NewPair(d.SourceID, e.QualifiedID(f))}
	logging.Debug("dropped", "side", string(e.side), "zone", d.Zone.String(), "event", res.Event())
	return res, nil
}

// DragEnd clears hover state whether or not a drop happened.
func (e *Editor) DragEnd() { e.drag.End() }
