// Package rules accumulates connector pairs into a declarative
// transformation script. The only operation is "shift": a map from
// destination dot path to source dot path.
package rules

import (
	"encoding/json"
	"fmt"

	"shiftmap-cli/internal/doc"
	"shiftmap-cli/internal/projector"
	"shiftmap-cli/internal/tree"
)

const OpShift = "shift"

// Operation is one script step.
type Operation struct {
	Operation string     `json:"operation" yaml:"operation"`
	Spec      doc.Object `json:"spec" yaml:"spec"`
}

// Script is the ordered operation list of a mapping session.
type Script struct {
	ops []Operation
}

func NewScript() *Script { return &Script{} }

// Operations returns the script steps in order.
func (s *Script) Operations() []Operation {
	out := make([]Operation, len(s.ops))
	copy(out, s.ops)
	return out
}

// Len is the number of operations.
func (s *Script) Len() int { return len(s.ops) }

func (s *Script) shiftIndex() int {
	for i, op := range s.ops {
		if op.Operation == OpShift {
			return i
		}
	}
	return -1
}

// Shift returns the spec of the shift operation, if one exists.
func (s *Script) Shift() (doc.Object, bool) {
	i := s.shiftIndex()
	if i < 0 {
		return nil, false
	}
	return s.ops[i].Spec, true
}

// RecordShift sets spec[dest] = source on the single shift operation,
// creating it on first use. Both arguments are qualified ids and are stored
// in dot notation. A later record for the same destination replaces it.
func (s *Script) RecordShift(destQID, sourceQID string) {
	i := s.shiftIndex()
	if i < 0 {
		s.ops = append(s.ops, Operation{Operation: OpShift, Spec: doc.Object{}})
		i = len(s.ops) - 1
	}
	s.ops[i].Spec.Set(projector.DotPath(destQID), projector.DotPath(sourceQID))
}

// RemoveShift deletes the entry for destQID. The shift operation itself stays
// even when it becomes empty.
func (s *Script) RemoveShift(destQID string) bool {
	i := s.shiftIndex()
	if i < 0 {
		return false
	}
	return s.ops[i].Spec.Delete(projector.DotPath(destQID))
}

// Reset drops every operation.
func (s *Script) Reset() { s.ops = nil }

func (s *Script) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Operations())
}

func (s *Script) MarshalYAML() (any, error) {
	return s.Operations(), nil
}

// ParseScript reads a script previously written as JSON or YAML.
func ParseScript(b []byte) (*Script, error) {
	v, err := doc.Parse(b)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("script must be a list of operations")
	}
	s := NewScript()
	for i, e := range list {
		obj, ok := e.(doc.Object)
		if !ok {
			return nil, fmt.Errorf("operation %d: not an object", i)
		}
		name, _ := obj.Get("operation")
		if name != OpShift {
			return nil, fmt.Errorf("operation %d: unsupported operation %v", i, name)
		}
		spec := doc.Object{}
		if raw, ok := obj.Get("spec"); ok && raw != nil {
			m, ok := raw.(doc.Object)
			if !ok {
				return nil, fmt.Errorf("operation %d: spec must be an object", i)
			}
			for _, mem := range m {
				src, ok := mem.Value.(string)
				if !ok {
					return nil, fmt.Errorf("operation %d: spec %q: source path must be a string", i, mem.Key)
				}
				spec.Set(mem.Key, src)
			}
		}
		s.ops = append(s.ops, Operation{Operation: OpShift, Spec: spec})
	}
	return s, nil
}

// Materialize projects a nested tree back into a plain document value: the
// live "what the destination looks like" preview, not the executed script.
func Materialize(nodes []*tree.Node, isArrayAtRoot bool) any {
	return tree.Materialize(nodes, isArrayAtRoot)
}
