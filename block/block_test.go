package block

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeTempGzip(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gw := gzip.NewWriter(f)
	if _, err := gw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBlockOffsetArithmetic(t *testing.T) {
	const blocksz BlockSz = 16
	for b := BlockOffset(0); b < 10; b++ {
		fo := fileOffsetAt(b, blocksz)
		for i := FileOffset(0); i < blocksz; i++ {
			got := blockOffsetAt(fo+i, blocksz)
			if got != b {
				t.Fatalf("block_offset_at(file_offset_at(%d)+%d) = %d, want %d", b, i, got, b)
			}
		}
	}
}

func TestPlainReadBlock(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 5) // 50 bytes
	path := writeTemp(t, "plain.log", data)

	r, err := New(path, TypePlain, Options{Blocksz: 16})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if r.FileSz() != FileOffset(len(data)) {
		t.Fatalf("filesz = %d, want %d", r.FileSz(), len(data))
	}

	last := r.LastBlockOffset()
	for bo := BlockOffset(0); bo <= last; bo++ {
		b, err := r.ReadBlock(bo)
		if err != nil {
			t.Fatalf("ReadBlock(%d): %v", bo, err)
		}
		if bo < last && b.Len() != 16 {
			t.Fatalf("block %d length = %d, want 16 (non-final block)", bo, b.Len())
		}
		if bo == last && (b.Len() < 1 || b.Len() > 16) {
			t.Fatalf("final block length = %d, want in [1,16]", b.Len())
		}
	}

	if _, err := r.ReadBlock(last + 1); err != ErrDone {
		t.Fatalf("ReadBlock past EOF = %v, want ErrDone", err)
	}
}

func TestDropThenReadForward(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 64)
	path := writeTemp(t, "plain.log", data)

	r, err := New(path, TypePlain, Options{Blocksz: 8})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if _, err := r.ReadBlock(0); err != nil {
		t.Fatal(err)
	}
	r.DropBlock(0)

	// A later block must still be readable after an earlier one is dropped.
	if _, err := r.ReadBlock(1); err != nil {
		t.Fatalf("ReadBlock(1) after DropBlock(0): %v", err)
	}
}

func TestGzipSequentialRead(t *testing.T) {
	data := bytes.Repeat([]byte("abcdefgh"), 100) // 800 bytes
	path := writeTempGzip(t, "plain.log.gz", data)

	r, err := New(path, TypeGzip, Options{Blocksz: 64})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if r.FileSz() != FileOffset(len(data)) {
		t.Fatalf("filesz = %d, want %d (from ISIZE trailer)", r.FileSz(), len(data))
	}

	var got []byte
	for bo := BlockOffset(0); ; bo++ {
		b, err := r.ReadBlock(bo)
		if err == ErrDone {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, b.Bytes...)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("reconstructed %d bytes, want %d bytes matching original", len(got), len(data))
	}
}

func TestDetect(t *testing.T) {
	cases := map[string]FileType{
		"a.log":     TypePlain,
		"a.log.gz":  TypeGzip,
		"a.log.xz":  TypeXz,
		"a.log.zst": TypeZstd,
		"a.tar":     TypeTar,
		"a.7z":      TypeSevenZip,
	}
	for name, want := range cases {
		if got := Detect(name); got != want {
			t.Errorf("Detect(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestSplitSubpath(t *testing.T) {
	archive, member, ok := SplitSubpath("archive.tar:var/log/syslog")
	if !ok || archive != "archive.tar" || member != "var/log/syslog" {
		t.Fatalf("got (%q, %q, %v)", archive, member, ok)
	}
	if _, _, ok := SplitSubpath("plain.log"); ok {
		t.Fatalf("expected ok=false for a path with no member suffix")
	}
}
