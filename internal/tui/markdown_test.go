package tui

import (
	"strings"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestRenderMarkdown_Empty(t *testing.T) {
	if got := RenderMarkdown("  \n", 40); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestRenderMarkdown_KeepsText(t *testing.T) {
	got := xansi.Strip(RenderMarkdown("# Keys\n\nPress **m** to pick up.", 40))
	if !strings.Contains(got, "Keys") || !strings.Contains(got, "pick up") {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestScriptMarkdown(t *testing.T) {
	md := scriptMarkdown("Shift script", []byte(`[{"operation":"shift"}]`))
	if !strings.HasPrefix(md, "### Shift script") || !strings.Contains(md, "```json\n[{") {
		t.Fatalf("unexpected markdown %q", md)
	}
}

func TestParseValue(t *testing.T) {
	cases := []struct {
		in   string
		want any
	}{
		{"", nil},
		{"42", 42},
		{"true", true},
		{"null", nil},
		{"hello", "hello"},
		{"{a: 1}", "{a: 1}"},
	}
	for _, tc := range cases {
		if got := parseValue(tc.in); got != tc.want {
			t.Fatalf("parseValue(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}
