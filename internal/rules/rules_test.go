package rules

import (
	"encoding/json"
	"testing"

	"shiftmap-cli/internal/doc"
	"shiftmap-cli/internal/tree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRecordShift_DotNotation(t *testing.T) {
	s := NewScript()
	s.RecordShift("address__street", "name")

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"operation":"shift","spec":{"address.street":"name"}}]`, string(b))
}

func TestRecordShift_SingleOperationLastWriteWins(t *testing.T) {
	s := NewScript()
	s.RecordShift("a", "x")
	s.RecordShift("b__c", "y__z")
	s.RecordShift("a", "w")

	require.Equal(t, 1, s.Len())
	spec, ok := s.Shift()
	require.True(t, ok)
	assert.Equal(t, doc.Object{{Key: "a", Value: "w"}, {Key: "b.c", Value: "y.z"}}, spec)
}

func TestRemoveShift(t *testing.T) {
	s := NewScript()
	assert.False(t, s.RemoveShift("a"))
	s.RecordShift("a", "x")
	assert.True(t, s.RemoveShift("a"))
	spec, _ := s.Shift()
	assert.Empty(t, spec)

	s.Reset()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(b))
}

func TestScript_YAML(t *testing.T) {
	s := NewScript()
	s.RecordShift("address__street", "name")
	b, err := yaml.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(b), "- operation: shift\n")
	assert.Contains(t, string(b), "address.street: name\n")

	back, err := ParseScript(b)
	require.NoError(t, err)
	assert.Equal(t, s.Operations(), back.Operations())
}

func TestParseScript_Errors(t *testing.T) {
	for _, in := range []string{
		`{"operation": "shift"}`,
		`[1]`,
		`[{"operation": "remove"}]`,
		`[{"operation": "shift", "spec": []}]`,
		`[{"operation": "shift", "spec": {"a": 1}}]`,
	} {
		_, err := ParseScript([]byte(in))
		assert.Error(t, err, in)
	}
	s, err := ParseScript([]byte(`[{"operation": "shift"}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestMaterialize_RoundTrip(t *testing.T) {
	v, err := doc.Parse([]byte(`{"firstName": "a", "postalAddress": {"country": "APE", "street": ""}, "tags": ["x", {"k": null}]}`))
	require.NoError(t, err)
	assert.True(t, doc.Equal(v, Materialize(tree.Build(v), false)))

	arr, err := doc.Parse([]byte(`[1, [2], {"a": "b"}]`))
	require.NoError(t, err)
	assert.True(t, doc.Equal(arr, Materialize(tree.Build(arr), true)))
}

func TestApply(t *testing.T) {
	in, err := doc.Parse([]byte(`{"name": "something", "age": "12", "address": {"street": {"line1": "l1"}}, "list": ["a", "b"]}`))
	require.NoError(t, err)

	s := NewScript()
	s.RecordShift("postalAddress__street", "address__street__line1")
	s.RecordShift("firstName", "name")
	s.RecordShift("postalAddress__city", "list__1")
	s.RecordShift("missing", "nope__x")

	out := Apply(s, in)
	b, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Equal(t, `{"postalAddress":{"street":"l1","city":"b"},"firstName":"something"}`, string(b))
}

func TestLookup(t *testing.T) {
	in := doc.Object{{Key: "a", Value: []any{doc.Object{{Key: "b", Value: 1}}}}}
	v, ok := Lookup(in, "a.0.b")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = Lookup(in, "a.1.b")
	assert.False(t, ok)
	_, ok = Lookup(in, "a.x")
	assert.False(t, ok)
	v, ok = Lookup(in, "")
	assert.True(t, ok)
	assert.Equal(t, in, v)
}
