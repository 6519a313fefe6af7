package cmd

import (
	"os"

	"golang.org/x/term"
)

// colorEnabled resolves --color (always/auto/never) against whether
// stderr is a terminal, mirroring the teacher's `golang.org/x/term`
// usage for its report-table rendering.
func colorEnabled(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return term.IsTerminal(int(os.Stderr.Fd()))
	}
}
