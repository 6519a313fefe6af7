package syslogproc

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/logmerge/logmerge/block"
	"github.com/logmerge/logmerge/datetime"
	"github.com/logmerge/logmerge/summary"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "f.log")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runAllStages(t *testing.T, p *Processor) []string {
	t.Helper()
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := p.BlockZero(); err != nil {
		t.Fatalf("BlockZero: %v", err)
	}
	if err := p.FindFirst(); err != nil {
		t.Fatalf("FindFirst: %v", err)
	}
	var lines []string
	for {
		sl, ok, err := p.StreamNext()
		if err != nil {
			t.Fatalf("StreamNext: %v", err)
		}
		if !ok {
			break
		}
		lines = append(lines, string(sl.Bytes()))
	}
	return lines
}

func TestProcessorFullPipeline(t *testing.T) {
	data := []byte(
		"2024-01-01 00:00:01 first\n" +
			"2024-01-01 00:00:02 second\n" +
			"2024-01-01 00:00:03 third\n",
	)
	path := writeTemp(t, data)
	p := New(path, 0, block.TypePlain, block.Options{Blocksz: 12}, datetime.Fallback{Year: 2024}, time.Time{}, time.Time{})

	lines := runAllStages(t, p)
	if len(lines) != 3 {
		t.Fatalf("got %d records, want 3", len(lines))
	}

	s := p.Summarize(time.Time{}, time.Time{})
	if s.Result != summary.FileOk {
		t.Fatalf("result = %v, want FileOk", s.Result)
	}
	if s.SyslinesRead != 3 {
		t.Fatalf("SyslinesRead = %d, want 3", s.SyslinesRead)
	}
}

func TestProcessorEmptyFile(t *testing.T) {
	path := writeTemp(t, []byte{})
	p := New(path, 0, block.TypePlain, block.Options{Blocksz: 16}, datetime.Fallback{Year: 2024}, time.Time{}, time.Time{})

	if err := p.Validate(); err == nil {
		t.Fatal("expected error for empty file")
	}
	s := p.Summarize(time.Time{}, time.Time{})
	if s.Result != summary.FileErrEmpty {
		t.Fatalf("result = %v, want FileErrEmpty", s.Result)
	}
}

func TestSummarizeReportsLinesRead(t *testing.T) {
	data := []byte(
		"2024-01-01 00:00:01 first\n" +
			"  continuation\n" +
			"2024-01-01 00:00:02 second\n",
	)
	path := writeTemp(t, data)
	p := New(path, 0, block.TypePlain, block.Options{Blocksz: 16}, datetime.Fallback{Year: 2024}, time.Time{}, time.Time{})
	runAllStages(t, p)

	s := p.Summarize(time.Time{}, time.Time{})
	if s.LinesRead != 3 {
		t.Fatalf("LinesRead = %d, want 3", s.LinesRead)
	}
}

func TestStreamNextDropsAllIntermediateBlocks(t *testing.T) {
	data := []byte(
		"2024-01-01 00:00:01 first\n" +
			"  filler filler filler filler filler filler filler filler\n" +
			"  filler filler filler filler filler filler filler filler\n" +
			"2024-01-01 00:00:02 second\n",
	)
	path := writeTemp(t, data)
	p := New(path, 0, block.TypePlain, block.Options{Blocksz: 8}, datetime.Fallback{Year: 2024}, time.Time{}, time.Time{})
	runAllStages(t, p)

	if p.blocksDropped == 0 {
		t.Fatal("expected at least one block dropped")
	}
	if p.blocksDropped != uint64(p.lastDroppedBlock)+1 {
		t.Fatalf("blocksDropped = %d, want %d (every block through the high-water mark dropped exactly once)",
			p.blocksDropped, p.lastDroppedBlock+1)
	}

	s := p.Summarize(time.Time{}, time.Time{})
	if s.BlocksDropped != p.blocksDropped {
		t.Fatalf("Summary.BlocksDropped = %d, want %d", s.BlocksDropped, p.blocksDropped)
	}
}

func TestProcessorDtRangeExcludesAll(t *testing.T) {
	data := []byte("2024-01-01 00:00:01 only line here\n")
	path := writeTemp(t, data)
	after := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	p := New(path, 0, block.TypePlain, block.Options{Blocksz: 16}, datetime.Fallback{Year: 2024}, after, time.Time{})

	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	if err := p.BlockZero(); err != nil {
		t.Fatal(err)
	}
	if err := p.FindFirst(); err == nil {
		t.Fatal("expected FileErrNoSyslinesInDtRange")
	}
	s := p.Summarize(after, time.Time{})
	if s.Result != summary.FileErrNoSyslinesInDtRange {
		t.Fatalf("result = %v, want FileErrNoSyslinesInDtRange", s.Result)
	}
}
