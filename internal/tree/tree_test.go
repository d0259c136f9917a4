package tree

import (
	"testing"

	"shiftmap-cli/internal/doc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) any {
	t.Helper()
	v, err := doc.Parse([]byte(s))
	require.NoError(t, err)
	return v
}

func find(t *testing.T, roots []*Node, path ...string) *Node {
	t.Helper()
	nodes := roots
	var cur *Node
	for _, k := range path {
		cur = nil
		for _, n := range nodes {
			if n.Key() == k {
				cur = n
				break
			}
		}
		require.NotNil(t, cur, "missing %v", path)
		nodes = cur.Children
	}
	return cur
}

func TestBuildMaterialize_RoundTrip(t *testing.T) {
	cases := []string{
		`{}`,
		`[]`,
		`{"a": {"b": 1}}`,
		`{"name": "something", "age": "12", "address": {"street": {"line1": "", "line2": ""}, "building": "sdf"}}`,
		`{"z": null, "a": [1, [2, 3], {"k": false}], "e": {}, "l": []}`,
		`[{"a": 1}, null, "x", [[]]]`,
	}
	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			v := mustParse(t, in)
			_, isArray := v.([]any)
			got := Materialize(Build(v), isArray)
			assert.True(t, doc.Equal(v, got), "got %#v", got)
		})
	}
}

func TestBuild_ArraysAndHandles(t *testing.T) {
	roots := Build(mustParse(t, `{"list": ["x", "y"], "obj": {"k": 1}}`))
	list := find(t, roots, "list")
	assert.True(t, list.Item.IsArray)
	assert.Equal(t, []string{"0", "1"}, []string{list.Children[0].Key(), list.Children[1].Key()})
	assert.False(t, find(t, roots, "obj").Item.IsArray)

	seen := map[Handle]bool{}
	Walk(roots, func(n *Node, _ int) bool {
		assert.NotZero(t, n.Handle())
		assert.False(t, seen[n.Handle()], "duplicate handle")
		seen[n.Handle()] = true
		return true
	})
	assert.Len(t, seen, 5)
}

func TestBuild_DeepNesting(t *testing.T) {
	var v any = "leaf"
	for i := 0; i < 2000; i++ {
		v = doc.Object{{Key: "n", Value: v}}
	}
	roots := Build(v)
	depth := 0
	Walk(roots, func(_ *Node, level int) bool {
		if level > depth {
			depth = level
		}
		return true
	})
	assert.Equal(t, 1999, depth)
	assert.True(t, doc.Equal(v, Materialize(roots, false)))
}

func TestStore_InsertBelowKeepsOrder(t *testing.T) {
	s := NewStore()
	s.Load(mustParse(t, `{"a": {"b": 1}}`))
	b := find(t, s.Roots(), "a", "b")

	c, err := s.InsertBelow(b, "c", 2)
	require.NoError(t, err)
	assert.Equal(t, "c", c.Key())

	got := Materialize(s.Roots(), false)
	assert.True(t, doc.Equal(mustParse(t, `{"a": {"b": 1, "c": 2}}`), got), "got %#v", got)
}

func TestStore_InsertAboveAtRoot(t *testing.T) {
	s := NewStore()
	s.Load(mustParse(t, `{"x": 1, "y": 2}`))
	_, err := s.InsertAbove(find(t, s.Roots(), "y"), "m", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "m", "y"}, Materialize(s.Roots(), false).(doc.Object).Keys())
}

func TestStore_MissingTargetsReturnErrors(t *testing.T) {
	s := NewStore()
	s.Load(mustParse(t, `{"a": {"b": 1}}`))
	stray := NewNode("stray", nil)

	_, err := s.Insert(stray, "k", 1)
	var ip InvalidParentError
	require.ErrorAs(t, err, &ip)
	assert.Equal(t, stray.Handle(), ip.Handle)

	_, err = s.InsertBelow(stray, "k", 1)
	var nf NotFoundError
	require.ErrorAs(t, err, &nf)

	require.ErrorAs(t, s.Delete(stray), &nf)
	require.ErrorAs(t, s.Update(stray, "x"), &nf)

	_, err = s.Insert(nil, "k", 1)
	require.ErrorAs(t, err, &ip)
}

func TestStore_DeleteByIdentityNotValue(t *testing.T) {
	s := NewStore()
	s.Load(mustParse(t, `{"p": {"x": 1}, "q": {"x": 1}}`))
	qx := find(t, s.Roots(), "q", "x")
	require.NoError(t, s.Delete(qx))
	got := Materialize(s.Roots(), false)
	assert.True(t, doc.Equal(mustParse(t, `{"p": {"x": 1}, "q": {}}`), got), "got %#v", got)
}

func TestStore_PublishesWholeTree(t *testing.T) {
	s := NewStore()
	var calls int
	var last []*Node
	unsub := s.Subscribe(func(roots []*Node) {
		calls++
		last = roots
	})
	assert.Equal(t, 1, calls)

	s.Load(mustParse(t, `{"a": 1}`))
	assert.Equal(t, 2, calls)
	require.Len(t, last, 1)

	require.NoError(t, s.Update(last[0], "renamed"))
	assert.Equal(t, 3, calls)
	assert.Equal(t, "renamed", s.Roots()[0].Key())

	unsub()
	s.Touch()
	assert.Equal(t, 3, calls)
}

func TestStore_CopySubtreeClones(t *testing.T) {
	s := NewStore()
	s.Load(mustParse(t, `{"src": {"k": {"v": 1}}, "dst": {}}`))
	src := find(t, s.Roots(), "src")
	dst := find(t, s.Roots(), "dst")

	c, err := s.CopySubtree(src, dst)
	require.NoError(t, err)
	assert.NotEqual(t, src.Handle(), c.Handle())
	assert.NotSame(t, src.Item, c.Item)

	c.Children[0].Item.Key = "changed"
	assert.Equal(t, "k", src.Children[0].Key())

	got := Materialize(s.Roots(), false)
	assert.True(t, doc.Equal(mustParse(t, `{"src": {"k": {"v": 1}}, "dst": {"src": {"changed": {"v": 1}}}}`), got))
}

func TestStore_CopySiblings(t *testing.T) {
	s := NewStore()
	s.Load(mustParse(t, `{"a": {"x": 1, "y": 2}}`))
	from := NewNode("n", "v")

	_, err := s.CopySubtreeAbove(from, find(t, s.Roots(), "a", "y"))
	require.NoError(t, err)
	_, err = s.CopySubtreeBelow(from, find(t, s.Roots(), "a", "y"))
	require.NoError(t, err)
	var keys []string
	for _, ch := range find(t, s.Roots(), "a").Children {
		keys = append(keys, ch.Key())
	}
	assert.Equal(t, []string{"x", "n", "y", "n"}, keys)
}

func TestStore_CopyValueOnly(t *testing.T) {
	s := NewStore()
	s.Load(mustParse(t, `{"address": {"street": ""}}`))
	street := find(t, s.Roots(), "address", "street")

	got, err := s.CopyValueOnly(NewNode("name", "something"), street)
	require.NoError(t, err)
	assert.Same(t, street, got)
	assert.Equal(t, "name", street.Value())

	_, err = s.CopyValueOnly(NewNode("name", nil), NewNode("x", nil))
	var nf NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestStore_CopyValueOnlyOntoContainer(t *testing.T) {
	s := NewStore()
	s.Load(mustParse(t, `{"address": {"street": ""}}`))
	address := find(t, s.Roots(), "address")

	_, err := s.CopyValueOnly(NewNode("name", "something"), address)
	require.NoError(t, err)
	assert.Equal(t, "name", address.Value())
	require.Len(t, address.Children, 1)

	// The value wins over the kept children when materializing.
	assert.Equal(t, mustParse(t, `{"address": "name"}`), Materialize(s.Roots(), false))
}

func TestStore_NoNodeHasTwoParents(t *testing.T) {
	s := NewStore()
	s.Load(mustParse(t, `{"a": {"b": 1, "c": [1, 2]}, "d": 3}`))
	b := find(t, s.Roots(), "a", "b")
	_, err := s.InsertAbove(b, "n1", 1)
	require.NoError(t, err)
	_, err = s.CopySubtree(find(t, s.Roots(), "a"), find(t, s.Roots(), "a", "c"))
	require.NoError(t, err)
	require.NoError(t, s.Delete(find(t, s.Roots(), "d")))
	_, err = s.CopySubtreeBelow(find(t, s.Roots(), "a", "c"), b)
	require.NoError(t, err)

	seen := map[*Node]int{}
	Walk(s.Roots(), func(n *Node, _ int) bool {
		seen[n]++
		return true
	})
	for n, c := range seen {
		assert.Equal(t, 1, c, "node %q reachable %d times", n.Key(), c)
	}
}

func TestUndoLog_RestoresByAppending(t *testing.T) {
	s := NewStore()
	s.Load(mustParse(t, `{"a": {"b": 1, "z": 2}}`))
	a := find(t, s.Roots(), "a")
	b := find(t, s.Roots(), "a", "b")

	var u UndoLog
	require.NoError(t, s.Delete(b))
	u.Record(Activity{Type: ActivityDeleted, Node: b, Parent: a})

	restored, err := u.Undo(s)
	require.NoError(t, err)
	assert.Same(t, b, restored)
	assert.Equal(t, []string{"z", "b"}, Materialize(a.Children, false).(doc.Object).Keys())

	_, err = u.Undo(s)
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestUndoLog_SingleSlot(t *testing.T) {
	s := NewStore()
	s.Load(mustParse(t, `{"x": 1, "y": 2}`))
	x := find(t, s.Roots(), "x")
	y := find(t, s.Roots(), "y")

	var u UndoLog
	require.NoError(t, s.Delete(x))
	u.Record(Activity{Type: ActivityDeleted, Node: x})
	require.NoError(t, s.Delete(y))
	u.Record(Activity{Type: ActivityDeleted, Node: y})
	u.Record(Activity{Type: ActivityAdded, Node: NewNode("ignored", nil)})

	rec, ok := u.Recent()
	require.True(t, ok)
	assert.Same(t, y, rec.Node)

	_, err := u.Undo(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, Materialize(s.Roots(), false).(doc.Object).Keys())
}
