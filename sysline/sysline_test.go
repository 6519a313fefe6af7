package sysline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/logmerge/logmerge/block"
	"github.com/logmerge/logmerge/datetime"
	"github.com/logmerge/logmerge/line"
)

func openPlain(t *testing.T, data []byte, blocksz block.BlockSz) *line.Reader {
	t.Helper()
	path := filepath.Join(t.TempDir(), "f.log")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	br, err := block.New(path, block.TypePlain, block.Options{Blocksz: blocksz})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { br.Close() })
	return line.New(br)
}

func TestFindSyslineSingleLine(t *testing.T) {
	data := []byte("2024-01-01 00:00:01 head\n2024-01-01 00:00:02 next\n")
	lr := openPlain(t, data, 9)
	sr := New(lr, datetime.Fallback{Year: 2024})

	next, sl, err := sr.FindSysline(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(sl.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(sl.Lines))
	}
	if string(sl.Bytes()) != "2024-01-01 00:00:01 head\n" {
		t.Fatalf("bytes = %q", sl.Bytes())
	}

	_, sl2, err := sr.FindSysline(next)
	if err != nil {
		t.Fatal(err)
	}
	if string(sl2.Bytes()) != "2024-01-01 00:00:02 next\n" {
		t.Fatalf("bytes = %q", sl2.Bytes())
	}
}

func TestFindSyslineMultiLine(t *testing.T) {
	data := []byte("2000-01-01 00:00:01 head\n  cont1\n  cont2\n2000-01-01 00:00:02 next\n")
	lr := openPlain(t, data, 11)
	sr := New(lr, datetime.Fallback{Year: 2000})

	next, sl, err := sr.FindSysline(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(sl.Lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(sl.Lines))
	}
	wantEnd := block.FileOffset(len("2000-01-01 00:00:01 head\n  cont1\n  cont2\n") - 1)
	if sl.FileOffsetEnd != wantEnd {
		t.Fatalf("end = %d, want %d", sl.FileOffsetEnd, wantEnd)
	}

	_, sl2, err := sr.FindSysline(next)
	if err != nil {
		t.Fatal(err)
	}
	if string(sl2.Bytes()) != "2000-01-01 00:00:02 next\n" {
		t.Fatalf("second sysline = %q", sl2.Bytes())
	}
}

func TestFindSyslineCachedViaRangeTree(t *testing.T) {
	data := []byte("2024-01-01 00:00:01 head\n  cont\n2024-01-01 00:00:02 next\n")
	lr := openPlain(t, data, 13)
	sr := New(lr, datetime.Fallback{Year: 2024})

	_, first, err := sr.FindSysline(0)
	if err != nil {
		t.Fatal(err)
	}
	// Probe a mid-sysline offset (inside the continuation line); should
	// hit the range tree and return the same cached Sysline.
	midOffset := first.FileOffsetBegin + 30
	_, cached, err := sr.FindSysline(midOffset)
	if err != nil {
		t.Fatal(err)
	}
	if cached != first {
		t.Fatalf("expected cached sysline identity match")
	}
}

func TestDropSysline(t *testing.T) {
	data := []byte("2024-01-01 00:00:01 head\n2024-01-01 00:00:02 next\n")
	lr := openPlain(t, data, 9)
	sr := New(lr, datetime.Fallback{Year: 2024})

	_, sl, err := sr.FindSysline(0)
	if err != nil {
		t.Fatal(err)
	}
	sr.DropSysline(sl.FileOffsetBegin)
	if _, ok := sr.syslines[sl.FileOffsetBegin]; ok {
		t.Fatalf("expected sysline to be removed from authoritative map")
	}
	if sr.tree.query(sl.FileOffsetBegin) != nil {
		t.Fatalf("expected range tree entry removed")
	}
}

func TestDropSyslineCascadesToLines(t *testing.T) {
	data := []byte("2024-01-01 00:00:01 head\n  cont\n2024-01-01 00:00:02 next\n")
	lr := openPlain(t, data, 13)
	sr := New(lr, datetime.Fallback{Year: 2024})

	_, sl, err := sr.FindSysline(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(sl.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(sl.Lines))
	}

	// Probe each component line via a fresh mid-line offset so the lookup
	// LRU (keyed on the probe offset, not fo) can't mask the authoritative
	// map: before the drop, the containment scan must return the exact
	// Line object FindSysline already assembled.
	for i, ln := range sl.Lines {
		_, probed, err := lr.FindLine(ln.FileOffsetBegin + 1)
		if err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if probed != ln {
			t.Fatalf("line %d: expected cached identity match before drop", i)
		}
	}

	sr.DropSysline(sl.FileOffsetBegin)

	for i, ln := range sl.Lines {
		_, probed, err := lr.FindLine(ln.FileOffsetBegin + 2)
		if err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if probed == ln {
			t.Fatalf("line %d: expected a freshly reconstructed Line once DropSysline cascaded the drop", i)
		}
	}
}

func TestFixupYearsHandlesRollover(t *testing.T) {
	data := []byte("Dec 31 23:00:00 old\nJan  1 01:00:00 new\n")
	lr := openPlain(t, data, 10)
	sr := New(lr, datetime.Fallback{})

	mtime := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	if err := sr.FixupYears(mtime); err != nil {
		t.Fatal(err)
	}
	if len(sr.order) != 2 {
		t.Fatalf("order len = %d, want 2", len(sr.order))
	}
	first, second := sr.order[0], sr.order[1]
	if first.Time.Year() != 2023 {
		t.Fatalf("first year = %d, want 2023 (before rollover)", first.Time.Year())
	}
	if second.Time.Year() != 2024 {
		t.Fatalf("second year = %d, want 2024", second.Time.Year())
	}
}
