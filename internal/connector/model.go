// Package connector keeps the ordered list of source->destination links of a
// mapping session and turns them into drawn lines, substituting the nearest
// rendered ancestor for any endpoint that is not on screen.
package connector

import (
	"errors"
	"fmt"

	"shiftmap-cli/internal/logging"
	"shiftmap-cli/internal/projector"
)

// UnresolvedAnchorError reports a pair for which no rendered anchor (not even
// an ancestor) exists for one endpoint. The pair stays registered.
type UnresolvedAnchorError struct {
	Pair   Pair
	Anchor string
}

func (e UnresolvedAnchorError) Error() string {
	return fmt.Sprintf("unresolved anchor %q for connector %s", e.Anchor, e.Pair)
}

// Connector is a registered pair plus the anchors it was drawn between.
type Connector struct {
	Pair        Pair
	From        string
	To          string
	Approximate bool

	line Line
}

// Model is the ordered connector list of one session. Every redraw clears and
// recreates all lines; there is no per-line diffing.
type Model struct {
	resolver AnchorResolver
	renderer Renderer

	pairs    []Pair
	rendered []*Connector
	active   bool
}

func NewModel(resolver AnchorResolver, renderer Renderer) *Model {
	return &Model{resolver: resolver, renderer: renderer, active: true}
}

// Pairs returns the registered pairs in registration order.
func (m *Model) Pairs() []Pair { return append([]Pair(nil), m.pairs...) }

// Connectors returns what the last redraw produced.
func (m *Model) Connectors() []*Connector { return m.rendered }

func (m *Model) Active() bool { return m.active }

// Register appends p and redraws everything.
func (m *Model) Register(p Pair) error {
	m.pairs = append(m.pairs, p)
	return m.Redraw()
}

// Remove drops the pair at index i and redraws.
func (m *Model) Remove(i int) (Pair, error) {
	if i < 0 || i >= len(m.pairs) {
		return Pair{}, fmt.Errorf("connector index out of range: %d", i)
	}
	p := m.pairs[i]
	m.pairs = append(m.pairs[:i:i], m.pairs[i+1:]...)
	return p, m.Redraw()
}

// RemoveAll erases every line and forgets every pair.
func (m *Model) RemoveAll() {
	m.ClearAll()
	m.pairs = nil
}

// ClearAll erases every drawn line. Pairs are kept for the next redraw.
func (m *Model) ClearAll() {
	for _, c := range m.rendered {
		if c.line != nil {
			c.line.Remove()
		}
	}
	m.rendered = nil
}

// Redraw clears and recreates every line. It does nothing while inactive.
// Pairs whose endpoints cannot be resolved at all are skipped and reported
// as UnresolvedAnchorError values joined into the returned error.
func (m *Model) Redraw() error {
	m.ClearAll()
	if !m.active || m.renderer == nil || m.resolver == nil {
		return nil
	}
	var errs []error
	for _, p := range m.pairs {
		c, err := m.draw(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		m.rendered = append(m.rendered, c)
	}
	return errors.Join(errs...)
}

func (m *Model) draw(p Pair) (*Connector, error) {
	from, fromExact, ok := Resolve(m.resolver, p.Source)
	if !ok {
		logging.Debug("connector endpoint unresolved", "pair", p.Event(), "anchor", p.Source)
		return nil, UnresolvedAnchorError{Pair: p, Anchor: p.Source}
	}
	to, toExact, ok := Resolve(m.resolver, p.Dest)
	if !ok {
		logging.Debug("connector endpoint unresolved", "pair", p.Event(), "anchor", p.Dest)
		return nil, UnresolvedAnchorError{Pair: p, Anchor: p.Dest}
	}
	c := &Connector{Pair: p, From: from, To: to, Approximate: !(fromExact && toExact)}
	style := ExactStyle()
	if c.Approximate {
		style = ApproximateStyle()
		logging.Debug("connector approximated", "pair", p.Event(), "from", from, "to", to)
	}
	line, err := m.renderer.Draw(from, to, style)
	if err != nil {
		return nil, fmt.Errorf("draw %s: %w", p, err)
	}
	c.line = line
	return c, nil
}

// Reposition recomputes geometry of every drawn line (scroll/resize).
func (m *Model) Reposition() {
	for _, c := range m.rendered {
		if c.line != nil {
			c.line.Position()
		}
	}
}

// SetActive turns drawing on or off. Deactivating erases lines (anchors are
// hidden); reactivating redraws.
func (m *Model) SetActive(active bool) error {
	m.active = active
	if !active {
		m.ClearAll()
		return nil
	}
	return m.Redraw()
}

// Geometry returns the rects of c's resolved anchors.
func (m *Model) Geometry(c *Connector) (from, to Rect, ok bool) {
	if m.resolver == nil || c == nil {
		return Rect{}, Rect{}, false
	}
	from, ok1 := m.resolver.RectOf(c.From)
	to, ok2 := m.resolver.RectOf(c.To)
	return from, to, ok1 && ok2
}

// Resolve returns id when it is rendered, otherwise the nearest rendered
// ancestor found by stripping trailing qualified-id segments. exact reports
// whether id itself was found.
func Resolve(r AnchorResolver, id string) (anchor string, exact bool, ok bool) {
	if r.Exists(id) {
		return id, true, true
	}
	cur := id
	for {
		parent, more := projector.ParentID(cur)
		if !more {
			return "", false, false
		}
		if r.Exists(parent) {
			return parent, false, true
		}
		cur = parent
	}
}
