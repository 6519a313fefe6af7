package line

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/logmerge/logmerge/block"
)

func openPlain(t *testing.T, data []byte, blocksz block.BlockSz) *block.Reader {
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
	return br
}

func TestFindLineBasic(t *testing.T) {
	data := []byte("alpha\nbravo charlie\ndelta\n")
	br := openPlain(t, data, 4) // small blocksz forces multi-block lines
	lr := New(br)

	want := []string{"alpha\n", "bravo charlie\n", "delta\n"}
	fo := block.FileOffset(0)
	for i, w := range want {
		next, ln, err := lr.FindLine(fo)
		if err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if got := string(ln.Bytes()); got != w {
			t.Fatalf("line %d = %q, want %q", i, got, w)
		}
		fo = next
	}
	if _, _, err := lr.FindLine(fo); err != ErrDone {
		t.Fatalf("final FindLine = %v, want ErrDone", err)
	}
}

func TestFindLineNoTrailingNewline(t *testing.T) {
	data := []byte("only line, no terminator")
	br := openPlain(t, data, 6)
	lr := New(br)

	_, ln, err := lr.FindLine(0)
	if err != nil {
		t.Fatal(err)
	}
	if string(ln.Bytes()) != string(data) {
		t.Fatalf("got %q, want %q", ln.Bytes(), data)
	}
	if ln.EndsWithNewline() {
		t.Fatalf("expected EndsWithNewline() == false")
	}
}

func TestLinePartsReproduceBytes(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789\n"), 20)
	br := openPlain(t, data, 7) // deliberately not aligned with line length
	lr := New(br)

	fo := block.FileOffset(0)
	for fo < br.FileSz() {
		next, ln, err := lr.FindLine(fo)
		if err != nil {
			t.Fatal(err)
		}
		reconstructed := ln.Bytes()
		want := data[ln.FileOffsetBegin : ln.FileOffsetEnd+1]
		if !bytes.Equal(reconstructed, want) {
			t.Fatalf("line at %d: got %q, want %q", ln.FileOffsetBegin, reconstructed, want)
		}
		fo = next
	}
}

func TestDropLineRemovesFromAuthoritativeMap(t *testing.T) {
	data := []byte("alpha\nbravo\ncharlie\n")
	br := openPlain(t, data, 5)
	lr := New(br)

	_, ln, err := lr.FindLine(0)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := lr.lines[ln.FileOffsetBegin]; !ok {
		t.Fatal("expected line present before drop")
	}
	lr.DropLine(ln.FileOffsetBegin)
	if _, ok := lr.lines[ln.FileOffsetBegin]; ok {
		t.Fatal("expected line removed after drop")
	}
}

func TestMidLineOffsetFindsContainingLine(t *testing.T) {
	data := []byte("alpha\nbravo\ncharlie\n")
	br := openPlain(t, data, 5)
	lr := New(br)

	// offset 8 lands inside "bravo\n" (which starts at offset 6).
	_, ln, err := lr.FindLine(8)
	if err != nil {
		t.Fatal(err)
	}
	if string(ln.Bytes()) != "bravo\n" {
		t.Fatalf("got %q, want %q", ln.Bytes(), "bravo\n")
	}
}
