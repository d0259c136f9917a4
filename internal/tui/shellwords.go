package tui

import (
	"strings"
	"unicode"
)

// splitShellWords splits an $EDITOR value into argv. Quotes group words and
// a quoted empty string survives as an empty argument.
func splitShellWords(s string) []string {
	var (
		out     []string
		cur     strings.Builder
		quote   rune
		started bool
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped, started = true, true
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '\'' || r == '"'):
			quote, started = r, true
		case quote == 0 && unicode.IsSpace(r):
			if started {
				out = append(out, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		out = append(out, cur.String())
	}
	return out
}
