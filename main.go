// Package main is the entry point for logmerge.
// logmerge merges and filters multiple syslog-style files by timestamp.
package main

import (
	"github.com/logmerge/logmerge/cmd"
)

// version, commit, and date are overridden at build time via
// -ldflags "-X main.version=... -X main.commit=... -X main.date=...",
// the same mechanism the teacher's build tooling uses.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// All command-line parsing, flag handling, and execution logic is
	// delegated to the cmd package.
	cmd.Execute(version, commit, date)
}
