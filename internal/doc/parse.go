package doc

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// ParseError reports a document that could not be decoded.
type ParseError struct {
	Source string
	Reason string
}

func (e ParseError) Error() string {
	if e.Source == "" {
		return "parse document: " + e.Reason
	}
	return fmt.Sprintf("parse document %s: %s", e.Source, e.Reason)
}

// Parse decodes JSON or YAML into document values.
//
// Empty input and a top-level null both yield an empty Object; a top-level
// scalar is rejected since it has no fields to map.
func Parse(b []byte) (any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, ParseError{Reason: err.Error()}
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return Object{}, nil
	}
	v, err := fromNode(root.Content[0])
	if err != nil {
		return nil, err
	}
	switch v.(type) {
	case nil:
		return Object{}, nil
	case Object, []any:
		return v, nil
	default:
		return nil, ParseError{Reason: "document root must be an object or array"}
	}
}

func fromNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.MappingNode:
		out := make(Object, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := fromNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out.Set(n.Content[i].Value, v)
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromNode(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return nil, nil
		case "!!str":
			return n.Value, nil
		default:
			var v any
			if err := n.Decode(&v); err != nil {
				return nil, ParseError{Reason: fmt.Sprintf("line %d: %v", n.Line, err)}
			}
			return v, nil
		}
	default:
		return nil, ParseError{Reason: fmt.Sprintf("line %d: unsupported node kind %d", n.Line, n.Kind)}
	}
}

// Load reads and parses a document from a local path or any URL afs understands
// (file://, mem://, http(s)://, ...).
func Load(ctx context.Context, location string) (any, error) {
	url, err := normalizeURL(location)
	if err != nil {
		return nil, err
	}
	b, err := afs.New().DownloadWithURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", location, err)
	}
	v, err := Parse(b)
	if err != nil {
		if pe, ok := err.(ParseError); ok {
			pe.Source = location
			return nil, pe
		}
		return nil, err
	}
	return v, nil
}

// ReadBytes returns the raw bytes behind location.
func ReadBytes(ctx context.Context, location string) ([]byte, error) {
	url, err := normalizeURL(location)
	if err != nil {
		return nil, err
	}
	return afs.New().DownloadWithURL(ctx, url)
}

func normalizeURL(location string) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", fmt.Errorf("empty document location")
	}
	if strings.Contains(location, "://") {
		return location, nil
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return "", err
	}
	return "file://" + filepath.ToSlash(abs), nil
}
