package tui

import (
	"reflect"
	"testing"
)

func TestSplitShellWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"nano", []string{"nano"}},
		{"code --wait", []string{"code", "--wait"}},
		{"vim -c 'set ft=json'", []string{"vim", "-c", "set ft=json"}},
		{`emacs -nw "my file"`, []string{"emacs", "-nw", "my file"}},
		{`hx\ beta`, []string{"hx beta"}},
		{`ed ''`, []string{"ed", ""}},
	}

	for _, tt := range tests {
		if got := splitShellWords(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("splitShellWords(%q)=%v, want %v", tt.in, got, tt.want)
		}
	}
}
