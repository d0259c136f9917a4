package connector

import (
	"fmt"
	"strings"
)

const (
	SourcePrefix   = "s"
	DestPrefix     = "d"
	EventSeparator = "|"
)

// Pair links a source anchor to a destination anchor. Both ids carry their
// side prefix: "s" + source qualified id, "d" + destination qualified id.
type Pair struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
}

// NewPair prefixes two qualified ids into anchor ids.
func NewPair(sourceQID, destQID string) Pair {
	return Pair{Source: SourcePrefix + sourceQID, Dest: DestPrefix + destQID}
}

// Event renders the pair as a registration event: "<source>|<dest>".
func (p Pair) Event() string { return p.Source + EventSeparator + p.Dest }

func (p Pair) String() string { return p.Event() }

// SourceQID strips the side prefix from Source.
func (p Pair) SourceQID() string { return strings.TrimPrefix(p.Source, SourcePrefix) }

// DestQID strips the side prefix from Dest.
func (p Pair) DestQID() string { return strings.TrimPrefix(p.Dest, DestPrefix) }

// MalformedEventError reports a registration event that is not "<s..>|<d..>".
type MalformedEventError struct {
	Event string
}

func (e MalformedEventError) Error() string {
	return fmt.Sprintf("malformed connector event: %q", e.Event)
}

// ParseEvent decodes a registration event.
func ParseEvent(event string) (Pair, error) {
	src, dst, ok := strings.Cut(event, EventSeparator)
	if !ok || len(src) <= len(SourcePrefix) || len(dst) <= len(DestPrefix) ||
		!strings.HasPrefix(src, SourcePrefix) || !strings.HasPrefix(dst, DestPrefix) {
		return Pair{}, MalformedEventError{Event: event}
	}
	return Pair{Source: src, Dest: dst}, nil
}
