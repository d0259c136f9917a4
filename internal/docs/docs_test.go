package docs

import (
	"strings"
	"testing"
)

func TestTopics(t *testing.T) {
	got := strings.Join(Topics(), ",")
	if got != "config,journal,keys,mapping,script" {
		t.Fatalf("unexpected topics: %s", got)
	}
}

func TestGet(t *testing.T) {
	body, ok := Get(" Mapping ")
	if !ok || !strings.HasPrefix(body, "# Mapping") {
		t.Fatalf("expected mapping doc, ok=%v", ok)
	}
	for _, topic := range []string{"", "nope", "../docs", "content/keys"} {
		if _, ok := Get(topic); ok {
			t.Fatalf("expected %q to be unknown", topic)
		}
	}
}
