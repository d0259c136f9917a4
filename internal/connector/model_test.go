package connector

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnchors map[string]Rect

func (a fakeAnchors) Exists(id string) bool { _, ok := a[id]; return ok }

func (a fakeAnchors) RectOf(id string) (Rect, bool) {
	r, ok := a[id]
	return r, ok
}

type drawCall struct {
	from, to string
	style    Style
}

type fakeLine struct {
	removed     bool
	repositions int
}

func (l *fakeLine) Remove()   { l.removed = true }
func (l *fakeLine) Position() { l.repositions++ }

type recorder struct {
	calls []drawCall
	lines []*fakeLine
	fail  bool
}

func (r *recorder) Draw(from, to string, style Style) (Line, error) {
	if r.fail {
		return nil, errors.New("boom")
	}
	r.calls = append(r.calls, drawCall{from: from, to: to, style: style})
	l := &fakeLine{}
	r.lines = append(r.lines, l)
	return l, nil
}

func (r *recorder) live() int {
	n := 0
	for _, l := range r.lines {
		if !l.removed {
			n++
		}
	}
	return n
}

func TestParseEvent(t *testing.T) {
	p, err := ParseEvent("sname|daddress__street")
	require.NoError(t, err)
	assert.Equal(t, Pair{Source: "sname", Dest: "daddress__street"}, p)
	assert.Equal(t, "name", p.SourceQID())
	assert.Equal(t, "address__street", p.DestQID())
	assert.Equal(t, "sname|daddress__street", NewPair("name", "address__street").Event())

	for _, bad := range []string{"", "sname", "s|d", "xname|daddr", "sname|xaddr"} {
		_, err := ParseEvent(bad)
		var me MalformedEventError
		assert.ErrorAs(t, err, &me, bad)
	}
}

func TestRegister_ExactConnector(t *testing.T) {
	anchors := fakeAnchors{"sname": {Y: 1}, "daddress__street": {Y: 3}}
	r := &recorder{}
	m := NewModel(anchors, r)

	require.NoError(t, m.Register(NewPair("name", "address__street")))
	require.Len(t, m.Connectors(), 1)
	c := m.Connectors()[0]
	assert.False(t, c.Approximate)
	assert.Equal(t, "sname", c.From)
	assert.Equal(t, "daddress__street", c.To)
	require.Len(t, r.calls, 1)
	assert.False(t, r.calls[0].style.Dashed)
	assert.Equal(t, "Delete", r.calls[0].style.MiddleLabel)

	from, to, ok := m.Geometry(c)
	require.True(t, ok)
	assert.Equal(t, 1, from.Y)
	assert.Equal(t, 3, to.Y)
}

func TestRegister_SubstitutesRenderedAncestor(t *testing.T) {
	anchors := fakeAnchors{"s1": {}, "d1": {}}
	r := &recorder{}
	m := NewModel(anchors, r)

	require.NoError(t, m.Register(Pair{Source: "s1", Dest: "d1__d2"}))
	require.Len(t, m.Connectors(), 1)
	c := m.Connectors()[0]
	assert.Equal(t, "s1", c.From)
	assert.Equal(t, "d1", c.To)
	assert.True(t, c.Approximate)
	assert.True(t, r.calls[0].style.Dashed)
	assert.Empty(t, r.calls[0].style.MiddleLabel)
}

func TestResolve_WalksSeveralLevels(t *testing.T) {
	anchors := fakeAnchors{"da": {}}
	got, exact, ok := Resolve(anchors, "da__b__c__d")
	require.True(t, ok)
	assert.False(t, exact)
	assert.Equal(t, "da", got)

	_, _, ok = Resolve(anchors, "dz__y")
	assert.False(t, ok)
}

func TestRegister_UnresolvedIsReportedNotFatal(t *testing.T) {
	anchors := fakeAnchors{"sa": {}, "db": {}}
	r := &recorder{}
	m := NewModel(anchors, r)

	err := m.Register(NewPair("missing", "b"))
	var ue UnresolvedAnchorError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "smissing", ue.Anchor)
	assert.Len(t, m.Pairs(), 1)
	assert.Empty(t, m.Connectors())

	err = m.Register(NewPair("a", "b"))
	require.ErrorAs(t, err, &ue, "the first pair is still unresolved")
	assert.Len(t, m.Connectors(), 1)
}

func TestRedraw_ClearsBeforeRecreating(t *testing.T) {
	anchors := fakeAnchors{"sa": {}, "sb": {}, "dx": {}, "dy": {}}
	r := &recorder{}
	m := NewModel(anchors, r)

	require.NoError(t, m.Register(NewPair("a", "x")))
	require.NoError(t, m.Register(NewPair("b", "y")))
	assert.Len(t, r.lines, 3)
	assert.Equal(t, 2, r.live())

	require.NoError(t, m.Redraw())
	assert.Equal(t, 2, r.live())
	assert.Len(t, m.Connectors(), 2)
}

func TestRemove(t *testing.T) {
	anchors := fakeAnchors{"sa": {}, "sb": {}, "dx": {}, "dy": {}}
	r := &recorder{}
	m := NewModel(anchors, r)
	require.NoError(t, m.Register(NewPair("a", "x")))
	require.NoError(t, m.Register(NewPair("b", "y")))

	p, err := m.Remove(0)
	require.NoError(t, err)
	assert.Equal(t, NewPair("a", "x"), p)
	assert.Equal(t, []Pair{NewPair("b", "y")}, m.Pairs())
	assert.Equal(t, 1, r.live())

	_, err = m.Remove(5)
	assert.Error(t, err)

	m.RemoveAll()
	assert.Empty(t, m.Pairs())
	assert.Empty(t, m.Connectors())
	assert.Equal(t, 0, r.live())
}

func TestSetActive_SuppressesDrawing(t *testing.T) {
	anchors := fakeAnchors{"sa": {}, "dx": {}}
	r := &recorder{}
	m := NewModel(anchors, r)

	require.NoError(t, m.SetActive(false))
	require.NoError(t, m.Register(NewPair("a", "x")))
	assert.Empty(t, r.calls)
	assert.Empty(t, m.Connectors())

	require.NoError(t, m.SetActive(true))
	assert.Len(t, r.calls, 1)
	assert.Equal(t, 1, r.live())

	require.NoError(t, m.SetActive(false))
	assert.Equal(t, 0, r.live())
	assert.Len(t, m.Pairs(), 1)
}

func TestReposition(t *testing.T) {
	anchors := fakeAnchors{"sa": {}, "dx": {}}
	r := &recorder{}
	m := NewModel(anchors, r)
	require.NoError(t, m.Register(NewPair("a", "x")))
	m.Reposition()
	m.Reposition()
	assert.Equal(t, 2, r.lines[0].repositions)
}

func TestRedraw_RendererErrorSkipsConnector(t *testing.T) {
	anchors := fakeAnchors{"sa": {}, "dx": {}}
	m := NewModel(anchors, &recorder{fail: true})
	err := m.Register(NewPair("a", "x"))
	require.Error(t, err)
	assert.Empty(t, m.Connectors())
	assert.Len(t, m.Pairs(), 1)
}
