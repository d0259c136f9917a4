// Package dragdrop turns pointer gestures over tree rows into structural
// intents: what was picked up, where it would land, and when a hovered row
// should auto-expand.
package dragdrop

import (
	"time"

	"shiftmap-cli/internal/projector"
	"shiftmap-cli/internal/tree"
)

// DefaultExpandDwell is how long a drag must hover a collapsed row before it
// expands.
const DefaultExpandDwell = 300 * time.Millisecond

type State int

const (
	StateIdle State = iota
	StateDragging
	StateHovering
	StateExpandPending
	StateDropped
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateHovering:
		return "hovering"
	case StateExpandPending:
		return "expand-pending"
	case StateDropped:
		return "dropped"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Expander is the expand/collapse state a hover may change.
type Expander interface {
	IsExpanded(f *projector.FlatNode) bool
	Expand(f *projector.FlatNode)
}

// Hover is the outcome of one drag-over event.
type Hover struct {
	Zone     Zone
	Expanded bool
}

// Drop is a resolved drop: a detached copy of the dragged node, its qualified
// id in the tree it came from, and the zone it landed in.
type Drop struct {
	Node     *tree.Node
	SourceID string
	Zone     Zone
}

// Controller is the per-pane drag state machine. Gestures are sequential, so
// one drag is active at a time and no locking is needed.
type Controller struct {
	dwell time.Duration
	now   func() time.Time

	state     State
	dragNode  *projector.FlatNode
	overNode  *projector.FlatNode
	overSince time.Time
	area      Zone
}

type Option func(*Controller)

// WithDwell overrides DefaultExpandDwell.
func WithDwell(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.dwell = d
		}
	}
}

// WithClock swaps the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func NewController(opts ...Option) *Controller {
	c := &Controller{dwell: DefaultExpandDwell, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Controller) State() State { return c.state }

// Area is the zone of the latest hover.
func (c *Controller) Area() Zone { return c.area }

// HoverNode is the row under the pointer, if any.
func (c *Controller) HoverNode() *projector.FlatNode { return c.overNode }

// Start snapshots the dragged row and the pane's flat map.
func (c *Controller) Start(p *projector.Projector, f *projector.FlatNode) (Payload, error) {
	payload, err := NewPayload(p, f)
	if err != nil {
		return Payload{}, err
	}
	c.dragNode = f
	c.state = StateDragging
	return payload, nil
}

// Over reclassifies the pointer within row f and auto-expands f once the drag
// has dwelt on it, collapsed, for longer than the dwell threshold.
func (c *Controller) Over(f *projector.FlatNode, offsetY, height float64, exp Expander) Hover {
	h := Hover{Zone: Classify(offsetY, height)}
	c.area = h.Zone
	now := c.now()

	if f != c.overNode {
		c.overNode = f
		c.overSince = now
		c.state = c.pendingState(f, exp)
		return h
	}
	if f != c.dragNode && f.Expandable && !exp.IsExpanded(f) && now.Sub(c.overSince) > c.dwell {
		exp.Expand(f)
		h.Expanded = true
	}
	c.state = c.pendingState(f, exp)
	return h
}

func (c *Controller) pendingState(f *projector.FlatNode, exp Expander) State {
	if f != c.dragNode && f.Expandable && !exp.IsExpanded(f) {
		return StateExpandPending
	}
	return StateHovering
}

// Drop resolves payload for a drop on the hovered row. On a malformed payload
// the drag is cancelled and nothing should be mutated.
func (c *Controller) Drop(payload Payload) (Drop, error) {
	zone := c.area
	if zone == ZoneNone {
		zone = ZoneCenter
	}
	n, err := payload.Resolve()
	c.reset()
	if err != nil {
		c.state = StateCancelled
		return Drop{}, err
	}
	c.state = StateDropped
	return Drop{Node: n, SourceID: payload.DragNodeID, Zone: zone}, nil
}

// End clears transient hover/expand state, with or without a drop.
func (c *Controller) End() {
	c.reset()
	c.state = StateIdle
}

func (c *Controller) reset() {
	c.dragNode = nil
	c.overNode = nil
	c.overSince = time.Time{}
	c.area = ZoneNone
}
