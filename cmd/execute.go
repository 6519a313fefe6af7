package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/logmerge/logmerge/block"
	"github.com/logmerge/logmerge/datetime"
	"github.com/logmerge/logmerge/merge"
	"github.com/logmerge/logmerge/summary"
	"github.com/logmerge/logmerge/syslogproc"

	"github.com/spf13/cobra"
)

// executeMerge is the root command's RunE: it discovers input files,
// resolves the datetime filter and prefix flags, spawns one worker per
// file, and drives the merge.Driver's k-way merge to stdout, mirroring
// the teacher's executeParsing shape (collect -> parse options -> stream
// -> report) but glued to this spec's Processor/Driver pair instead of
// quellog's parser/analysis packages.
func executeMerge(cmd *cobra.Command, args []string) error {
	now := time.Now()

	blocksz, err := parseBlocksz(blockszFlag)
	if err != nil {
		return err
	}
	maxSize, err := parseMaxSize(maxSizeFlag)
	if err != nil {
		return err
	}
	tzMinutes, err := resolveTZOffset(tzOffsetFlag)
	if err != nil {
		return err
	}
	after, before, err := resolveFilters(dtAfterFlag, dtBeforeFlag, tzMinutes, now)
	if err != nil {
		return err
	}

	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "[INFO] no input files found")
		return nil
	}

	prefix := buildPrefixConfig(files)
	recordSep := merge.DecodeEscapes(syslineSeparatorFlag)

	opts := block.Options{Blocksz: blocksz, MaxUncompressedSize: maxSize}
	fb := datetime.Fallback{Year: now.Year(), OffsetMinutes: tzMinutes}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	driver := merge.NewDriver(os.Stdout, prefix, recordSep)

	for pathID, f := range files {
		fopts := opts
		archivePath := f.path
		if f.ft == block.TypeTar || f.ft == block.TypeSevenZip {
			archive, member, ok := block.SplitSubpath(f.path)
			if ok {
				archivePath = archive
				fopts.Subpath = member
			}
		}

		proc := syslogproc.New(archivePath, pathID, f.ft, fopts, fb, after, before)
		ch := make(chan merge.Message, merge.ChannelCapacity)
		driver.AddSource(f.path, pathID, ch)
		go merge.RunWorker(ctx, proc, ch, pathID, after, before)
	}

	agg, runErr := driver.Run()

	if summaryFlagCLI {
		printSummary(agg, after, before, now, colorEnabled(colorFlag))
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] output: %v\n", runErr)
		return runErr
	}
	if !agg.Success() {
		return fmt.Errorf("cmd: %d of %d files failed", agg.FilesFailed, agg.Files)
	}
	return nil
}

// parseBlocksz accepts decimal/hex/octal/binary literals per spec.md §6
// (strconv's base-0 parsing recognizes 0x/0o/0b prefixes and a bare
// leading 0 as octal) and bounds the result to [BlockszMin, BlockszMax].
func parseBlocksz(s string) (block.BlockSz, error) {
	n, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("cmd: --blocksz %q: %w", s, err)
	}
	if n < block.BlockszMin || n > block.BlockszMax {
		return 0, fmt.Errorf("cmd: --blocksz %d out of range [%d, %d]", n, block.BlockszMin, block.BlockszMax)
	}
	return n, nil
}

// parseMaxSize parses --max-decompressed-size; "" or "0" means the
// block package's built-in default.
func parseMaxSize(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("cmd: --max-decompressed-size %q: %w", s, err)
	}
	return n, nil
}

// buildPrefixConfig assembles a merge.PrefixConfig from the --prepend-*
// flags, computing the common alignment width across every input when
// --prepend-file-align is set.
func buildPrefixConfig(files []inputFile) merge.PrefixConfig {
	cfg := merge.PrefixConfig{
		UseUTC:    prependUTCFlag,
		UseLocal:  prependLocalFlag,
		DtFormat:  prependDtFormatFlag,
		Separator: merge.DecodeEscapes(prependSeparatorFlag),
	}
	switch {
	case prependFilepathFlag:
		cfg.Filename = merge.FilenameFull
	case prependFilenameFlag:
		cfg.Filename = merge.FilenameBase
	}
	if cfg.Filename != merge.FilenameNone && prependFileAlignFlag {
		width := 0
		for _, f := range files {
			name := f.path
			if cfg.Filename == merge.FilenameBase {
				name = filepath.Base(f.path)
			}
			if len(name) > width {
				width = len(name)
			}
		}
		cfg.AlignWidth = width
	}
	return cfg
}

// printSummary renders the per-file and aggregate report spec.md §6
// requires on stderr when --summary is given. When color is enabled, ok
// file lines are colored green and failed ones red using raw ANSI escapes,
// the same direct-escape-code style as the teacher's output/text.go
// (rather than a terminal-color library, which nothing in the pack uses).
func printSummary(agg *summary.Aggregate, after, before, now time.Time, color bool) {
	fmt.Fprintln(os.Stderr, "--- logmerge summary ---")
	for _, s := range agg.PerFile {
		line := s.Line()
		if color {
			if s.Ok() {
				line = "\033[32m" + line + "\033[0m"
			} else {
				line = "\033[31m" + line + "\033[0m"
			}
		}
		fmt.Fprintln(os.Stderr, line)
	}
	fmt.Fprintf(os.Stderr,
		"files=%d ok=%d failed=%d bytes=%d lines=%d syslines=%d dt-after=%s dt-before=%s now=%s recv(ok=%d err=%d)\n",
		agg.Files, agg.FilesOk, agg.FilesFailed,
		agg.TotalBytes, agg.TotalLines, agg.TotalSyslines,
		formatFilterBound(after), formatFilterBound(before),
		now.Format(time.RFC3339),
		agg.ChannelRecvOk, agg.ChannelRecvErr,
	)
}

func formatFilterBound(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}
