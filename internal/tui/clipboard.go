package tui

import (
	"strings"

	"github.com/atotto/clipboard"
)

// clipboardWriteAll is swapped out in tests.
var clipboardWriteAll = clipboard.WriteAll

func copyToClipboard(s string) error {
	return clipboardWriteAll(strings.ReplaceAll(s, "\r\n", "\n"))
}
