package dragdrop

import (
	"encoding/json"
	"testing"
	"time"

	"shiftmap-cli/internal/doc"
	"shiftmap-cli/internal/projector"
	"shiftmap-cli/internal/tree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }
func newClock() *fakeClock                   { return &fakeClock{t: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)} }
func rowByKey(p *projector.Projector, k string) *projector.FlatNode {
	for _, f := range p.Nodes() {
		if f.Key() == k {
			return f
		}
	}
	return nil
}

func project(t *testing.T, s string) *projector.Projector {
	t.Helper()
	v, err := doc.Parse([]byte(s))
	require.NoError(t, err)
	p := projector.New()
	p.Project(tree.Build(v))
	return p
}

func TestClassify(t *testing.T) {
	tests := []struct {
		offset, height float64
		want           Zone
	}{
		{0, 20, ZoneAbove},
		{4.9, 20, ZoneAbove},
		{5, 20, ZoneCenter},
		{10, 20, ZoneCenter},
		{15, 20, ZoneCenter},
		{15.1, 20, ZoneBelow},
		{20, 20, ZoneBelow},
		{3, 0, ZoneCenter},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.offset, tt.height), "offset=%v height=%v", tt.offset, tt.height)
	}
	assert.Equal(t, "below", ZoneBelow.String())
}

func TestPayload_RoundTripResolve(t *testing.T) {
	p := project(t, `{"name": "something", "address": {"street": {"line1": "a", "line2": 7}}}`)
	street := rowByKey(p, "street")

	payload, err := NewPayload(p, street)
	require.NoError(t, err)
	assert.Equal(t, "address__street", payload.DragNodeID)

	b, err := payload.Marshal()
	require.NoError(t, err)
	back, err := UnmarshalPayload(b)
	require.NoError(t, err)

	n, err := back.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "street", n.Key())
	require.Len(t, n.Children, 2)
	assert.Equal(t, "line2", n.Children[1].Key())
	assert.Equal(t, json.Number("7"), n.Children[1].Value())

	orig, _ := p.Map().Node(street)
	assert.NotEqual(t, orig.Handle(), n.Handle())
}

func TestPayload_ResolveMatchesLevel(t *testing.T) {
	p := project(t, `{"outer": {"id": "inner"}, "id": "top"}`)
	top := p.Nodes()[2]
	require.Equal(t, "id", top.Key())
	require.Equal(t, 0, top.Level)

	payload, err := NewPayload(p, top)
	require.NoError(t, err)
	n, err := payload.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "top", n.Value())
}

func TestPayload_ResolvePicksTheDraggedArrayElement(t *testing.T) {
	p := project(t, `{"items": [{"id": "first"}, {"id": "second"}]}`)
	second, ok := p.FindByQualifiedID("items__1__id")
	require.True(t, ok)

	payload, err := NewPayload(p, second)
	require.NoError(t, err)
	n, err := payload.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "second", n.Value())

	// Without the id only key and level are left, and the first match wins.
	payload.DragNodeID = ""
	n, err = payload.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "first", n.Value())
}

func TestPayload_Malformed(t *testing.T) {
	var mp MalformedPayloadError

	_, err := Payload{}.Resolve()
	require.ErrorAs(t, err, &mp)

	_, err = Payload{FlatMap: "{not json", DragNode: `{}`}.Resolve()
	require.ErrorAs(t, err, &mp)
	assert.Equal(t, "flatMap", mp.Field)

	_, err = Payload{FlatMap: `[]`, DragNode: `{"item":{"key":"ghost"}}`}.Resolve()
	require.ErrorAs(t, err, &mp)
	assert.Equal(t, "dragNode", mp.Field)

	_, err = UnmarshalPayload([]byte("nope"))
	require.ErrorAs(t, err, &mp)
}

func TestController_LifecycleAndZones(t *testing.T) {
	src := project(t, `{"name": "x"}`)
	dst := project(t, `{"address": {"street": ""}}`)
	exp := projector.NewExpansion()
	clk := newClock()

	drag := NewController(WithClock(clk.now))
	payload, err := drag.Start(src, rowByKey(src, "name"))
	require.NoError(t, err)
	assert.Equal(t, StateDragging, drag.State())

	drop := NewController(WithClock(clk.now))
	address := rowByKey(dst, "address")
	h := drop.Over(address, 1, 10, exp)
	assert.Equal(t, ZoneAbove, h.Zone)
	assert.Equal(t, StateExpandPending, drop.State())
	h = drop.Over(address, 9, 10, exp)
	assert.Equal(t, ZoneBelow, h.Zone)
	assert.Equal(t, ZoneBelow, drop.Area())

	d, err := drop.Drop(payload)
	require.NoError(t, err)
	assert.Equal(t, ZoneBelow, d.Zone)
	assert.Equal(t, "name", d.SourceID)
	assert.Equal(t, "name", d.Node.Key())
	assert.Equal(t, StateDropped, drop.State())
	assert.Nil(t, drop.HoverNode())

	drag.End()
	assert.Equal(t, StateIdle, drag.State())
}

func TestController_DropDefaultsToCenter(t *testing.T) {
	src := project(t, `{"name": "x"}`)
	c := NewController()
	payload, err := c.Start(src, src.Nodes()[0])
	require.NoError(t, err)
	d, err := NewController().Drop(payload)
	require.NoError(t, err)
	assert.Equal(t, ZoneCenter, d.Zone)
}

func TestController_MalformedDropCancels(t *testing.T) {
	c := NewController()
	_, err := c.Drop(Payload{FlatMap: "[", DragNode: "{}"})
	var mp MalformedPayloadError
	require.ErrorAs(t, err, &mp)
	assert.Equal(t, StateCancelled, c.State())
}

func TestController_AutoExpandAfterDwell(t *testing.T) {
	p := project(t, `{"address": {"street": ""}, "name": "n"}`)
	exp := projector.NewExpansion()
	clk := newClock()
	c := NewController(WithClock(clk.now))
	address := rowByKey(p, "address")

	h := c.Over(address, 5, 10, exp)
	assert.False(t, h.Expanded)

	clk.advance(200 * time.Millisecond)
	h = c.Over(address, 5, 10, exp)
	assert.False(t, h.Expanded)
	assert.False(t, exp.IsExpanded(address))

	clk.advance(150 * time.Millisecond)
	h = c.Over(address, 5, 10, exp)
	assert.True(t, h.Expanded)
	assert.True(t, exp.IsExpanded(address))
	assert.Equal(t, StateHovering, c.State())

	h = c.Over(address, 5, 10, exp)
	assert.False(t, h.Expanded, "already expanded")
}

func TestController_MovingToAnotherRowRestartsDwell(t *testing.T) {
	p := project(t, `{"a": {"x": 1}, "b": {"y": 2}}`)
	exp := projector.NewExpansion()
	clk := newClock()
	c := NewController(WithClock(clk.now), WithDwell(100*time.Millisecond))
	a := rowByKey(p, "a")
	b := rowByKey(p, "b")

	c.Over(a, 5, 10, exp)
	clk.advance(80 * time.Millisecond)
	c.Over(b, 5, 10, exp)
	clk.advance(80 * time.Millisecond)
	h := c.Over(b, 5, 10, exp)
	assert.False(t, h.Expanded)
	assert.False(t, exp.IsExpanded(a))

	clk.advance(30 * time.Millisecond)
	h = c.Over(b, 5, 10, exp)
	assert.True(t, h.Expanded)
}

func TestController_DoesNotExpandDraggedRow(t *testing.T) {
	p := project(t, `{"a": {"x": 1}}`)
	exp := projector.NewExpansion()
	clk := newClock()
	c := NewController(WithClock(clk.now))
	a := rowByKey(p, "a")
	_, err := c.Start(p, a)
	require.NoError(t, err)

	c.Over(a, 5, 10, exp)
	clk.advance(time.Second)
	h := c.Over(a, 5, 10, exp)
	assert.False(t, h.Expanded)
	assert.Equal(t, StateHovering, c.State())
}
