package rules

import (
	"strconv"
	"strings"

	"shiftmap-cli/internal/doc"
)

// Apply runs the script's shift operations against input. For each
// destination path the value at the source path is copied into a fresh
// output object, creating intermediate objects as needed. Source paths that
// do not exist are skipped.
func Apply(s *Script, input any) doc.Object {
	out := doc.Object{}
	for _, op := range s.ops {
		if op.Operation != OpShift {
			continue
		}
		for _, m := range op.Spec {
			src, _ := m.Value.(string)
			v, ok := Lookup(input, src)
			if !ok {
				continue
			}
			setPath(&out, strings.Split(m.Key, "."), v)
		}
	}
	return out
}

// Lookup follows a dot path through objects and arrays.
func Lookup(v any, path string) (any, bool) {
	if path == "" {
		return v, true
	}
	cur := v
	for _, seg := range strings.Split(path, ".") {
		switch t := cur.(type) {
		case doc.Object:
			next, ok := t.Get(seg)
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(t) {
				return nil, false
			}
			cur = t[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

func setPath(o *doc.Object, path []string, v any) {
	if len(path) == 1 {
		o.Set(path[0], v)
		return
	}
	child, ok := o.Get(path[0])
	obj, isObj := child.(doc.Object)
	if !ok || !isObj {
		obj = doc.Object{}
	}
	setPath(&obj, path[1:], v)
	o.Set(path[0], obj)
}
