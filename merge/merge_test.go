package merge

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/logmerge/logmerge/block"
	"github.com/logmerge/logmerge/datetime"
	"github.com/logmerge/logmerge/line"
	"github.com/logmerge/logmerge/summary"
	"github.com/logmerge/logmerge/syslogproc"
	"github.com/logmerge/logmerge/sysline"
)

func TestDecodeEscapes(t *testing.T) {
	got := DecodeEscapes(`a\tb\nc\\d`)
	want := "a\tb\nc\\d"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStrftime(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 9, 7, 2, 0, time.UTC)
	got := strftime("%Y-%m-%d %H:%M:%S", ts)
	if got != "2024-03-05 09:07:02" {
		t.Fatalf("got %q", got)
	}
}

func allSyslines(t *testing.T, path string) []*sysline.Sysline {
	t.Helper()
	br, err := block.New(path, block.TypePlain, block.Options{Blocksz: 64})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { br.Close() })
	lr := line.New(br)
	sr := sysline.New(lr, datetime.Fallback{Year: 2024})

	var out []*sysline.Sysline
	fo := block.FileOffset(0)
	for {
		next, sl, err := sr.FindSysline(fo)
		if err == sysline.ErrDone {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, sl)
		fo = next
	}
	return out
}

func TestDriverMergesByTimestamp(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.log")
	pathB := filepath.Join(dir, "b.log")
	os.WriteFile(pathA, []byte("2024-01-01 00:00:01 a-one\n2024-01-01 00:00:03 a-two\n"), 0o644)
	os.WriteFile(pathB, []byte("2024-01-01 00:00:02 b-one\n2024-01-01 00:00:04 b-two\n"), 0o644)

	aSyslines := allSyslines(t, pathA)
	bSyslines := allSyslines(t, pathB)

	chA := make(chan Message, ChannelCapacity)
	chB := make(chan Message, ChannelCapacity)

	go func() {
		for _, sl := range aSyslines {
			chA <- Message{Record: &syslogproc.Record{Sysline: sl, PathID: 0}}
		}
		chA <- Message{Summary: &summary.Summary{Path: pathA, Result: summary.FileOk}, IsLast: true}
		close(chA)
	}()
	go func() {
		for _, sl := range bSyslines {
			chB <- Message{Record: &syslogproc.Record{Sysline: sl, PathID: 1}}
		}
		chB <- Message{Summary: &summary.Summary{Path: pathB, Result: summary.FileOk}, IsLast: true}
		close(chB)
	}()

	var out bytes.Buffer
	d := NewDriver(&out, PrefixConfig{}, "")
	d.AddSource(pathA, 0, chA)
	d.AddSource(pathB, 1, chB)

	agg, err := d.Run()
	if err != nil {
		t.Fatal(err)
	}
	if !agg.Success() {
		t.Fatalf("expected aggregate success")
	}

	want := "2024-01-01 00:00:01 a-one\n" +
		"2024-01-01 00:00:02 b-one\n" +
		"2024-01-01 00:00:03 a-two\n" +
		"2024-01-01 00:00:04 b-two\n"
	if out.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", out.String(), want)
	}
}
