package store

import (
	"strings"
	"testing"
)

func TestNewRandomID_Shape(t *testing.T) {
	id, err := newRandomID("ses")
	if err != nil {
		t.Fatalf("newRandomID: %v", err)
	}
	if !strings.HasPrefix(id, "ses-") {
		t.Fatalf("expected ses prefix, got %q", id)
	}
	suffix := strings.TrimPrefix(id, "ses-")
	if got, want := len(suffix), 8; got != want {
		t.Fatalf("expected suffix len %d, got %d (%q)", want, got, suffix)
	}
	if suffix != strings.ToLower(suffix) {
		t.Fatalf("expected a lowercase suffix, got %q", suffix)
	}
}

func TestNewRandomID_Distinct(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 64; i++ {
		id, err := newRandomID("ses")
		if err != nil {
			t.Fatalf("newRandomID: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
