// Package cmd implements the command-line interface for logmerge.
// It uses the Cobra library to handle commands, flags, and execution.
package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

// Version information (passed from main)
var (
	version string
	commit  string
	date    string
)

// Flag variables for command-line options.
// These are package-level variables as required by Cobra's flag binding.
var (
	// Block and file-handling flags
	blockszFlag   string // --blocksz: block size for the block reader (decimal/hex/octal)
	maxSizeFlag   string // --max-decompressed-size: cap per-member decompressed size

	// Time filtering flags
	dtAfterFlag  string // --dt-after: only syslines at or after this datetime
	dtBeforeFlag string // --dt-before: only syslines at or before this datetime
	tzOffsetFlag string // --tz-offset: fallback UTC offset, e.g. "-0500" or "PST"

	// Prefix (merged-output line prefix) flags
	prependUTCFlag       bool   // --prepend-utc: render the prefix timestamp in UTC
	prependLocalFlag     bool   // --prepend-local: render the prefix timestamp in local time
	prependDtFormatFlag  string // --prepend-dt-format: strftime-like format for the prefix timestamp
	prependFilenameFlag  bool   // --prepend-filename: prefix each line with its source basename
	prependFilepathFlag  bool   // --prepend-filepath: prefix each line with its full source path
	prependFileAlignFlag bool   // --prepend-file-align: pad filename/path prefixes to a common width
	prependSeparatorFlag string // --prepend-separator: string between the prefix and the line

	// Output flags
	syslineSeparatorFlag string // --sysline-separator: string written between merged syslines
	colorFlag            string // --color: always|auto|never
	summaryFlagCLI       bool   // --summary: print a per-file and aggregate summary to stderr
)

// rootCmd is the main command for the logmerge CLI.
var rootCmd = &cobra.Command{
	Use:   "logmerge [files or dirs]",
	Short: "Merge and filter multiple syslog-style files by timestamp",
	Long: `logmerge reads one or more plain, gzip, xz, zstd, tar, or 7z
syslog-style files (or directories of them) and streams their syslines
to stdout in a single, globally timestamp-ordered merge.

Each input is processed as a bounded sequence of blocks, so multi-line
syslines spanning block boundaries are reconstructed without loading
whole files into memory. Datetime filtering, line prefixing, and a
per-file processing summary are all available via flags.

Specify log files, directories, archive members (path:member), or "-"
to read newline-delimited paths from stdin.`,
	RunE: executeMerge,
}

// Execute runs the root command. This is called by main.go to start
// the CLI application.
func Execute(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// init registers all command-line flags.
func init() {
	rootCmd.Flags().StringVar(&blockszFlag, "blocksz", "65535",
		"Block size in bytes for the block reader (accepts decimal, 0x hex, 0o octal)")
	rootCmd.Flags().StringVar(&maxSizeFlag, "max-decompressed-size", "",
		"Cap on a compressed member's allowed decompressed size (bytes); 0 means the built-in default")

	rootCmd.Flags().StringVar(&dtAfterFlag, "dt-after", "",
		"Only include syslines at or after this datetime (absolute, or relative like -1h30m, or @+1h relative to --dt-before)")
	rootCmd.Flags().StringVar(&dtBeforeFlag, "dt-before", "",
		"Only include syslines at or before this datetime (absolute, or relative like +2d, or @-1h relative to --dt-after)")
	rootCmd.Flags().StringVar(&tzOffsetFlag, "tz-offset", "",
		"Fallback UTC offset for timestamps lacking one, e.g. -0500 or a named zone like PST")

	rootCmd.Flags().BoolVar(&prependUTCFlag, "prepend-utc", false,
		"Render the prefix timestamp in UTC")
	rootCmd.Flags().BoolVar(&prependLocalFlag, "prepend-local", false,
		"Render the prefix timestamp in local time")
	rootCmd.Flags().StringVar(&prependDtFormatFlag, "prepend-dt-format", "",
		"strftime-like format for the prefix timestamp (default omits the timestamp)")
	rootCmd.Flags().BoolVar(&prependFilenameFlag, "prepend-filename", false,
		"Prefix each line with its source file's basename")
	rootCmd.Flags().BoolVar(&prependFilepathFlag, "prepend-filepath", false,
		"Prefix each line with its source file's full path")
	rootCmd.Flags().BoolVar(&prependFileAlignFlag, "prepend-file-align", false,
		"Pad filename/path prefixes to a common width across all inputs")
	rootCmd.Flags().StringVar(&prependSeparatorFlag, "prepend-separator", ": ",
		`String between the prefix and the line; supports \n \t \0 etc. escapes`)

	rootCmd.Flags().StringVar(&syslineSeparatorFlag, "sysline-separator", "",
		`String written between merged syslines; supports \n \t \0 etc. escapes`)
	rootCmd.Flags().StringVar(&colorFlag, "color", "auto",
		"Colorize diagnostic output: always, auto, or never")
	rootCmd.Flags().BoolVar(&summaryFlagCLI, "summary", false,
		"Print a per-file and aggregate processing summary to stderr")
}
