package main

import (
	"os"
	"strings"

	"shiftmap-cli/internal/cli"
)

func isSessionID(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "ses-") && len(s) > len("ses-")
}

func rewriteDirectSessionArgs(argv []string) []string {
	// Convenience: `shiftmap <session-id>` works like `shiftmap sessions show <session-id>`.
	//
	// Cobra treats the first non-flag token as a subcommand, so we rewrite argv before parsing.
	// Persistent flags may come first (`shiftmap --journal x.sqlite ses-...`), so find the first
	// positional token rather than argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--format":    true,
		"--journal":   true,
		"--log-level": true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
		"--log":    true,
	}

	rewrite := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "sessions", "show")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isSessionID(argv[i+1]) {
				return rewrite(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}
		if isSessionID(a) {
			return rewrite(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDirectSessionArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
