package utmp

import (
	"errors"
	"io"
	"os"
	"time"
)

// ErrDone signals the requested offset is at or past end-of-file.
var ErrDone = errors.New("utmp: done, offset at or past end of file")

// Reader exposes a utmp/wtmp file as a sequence of fixed-size Entries.
// Unlike block.Reader, utmp files are always plain and seekable, so no
// block-addressing or decompression layer is needed — spec.md §4.7
// calls this out explicitly ("no line concept").
type Reader struct {
	f      *os.File
	filesz int64
}

// Open opens path for fixed-size record access.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Reader{f: f, filesz: fi.Size()}, nil
}

// FileSz returns the file size in bytes.
func (r *Reader) FileSz() int64 { return r.filesz }

// Close releases the underlying file.
func (r *Reader) Close() error { return r.f.Close() }

// readAt reads exactly one UtmpxSz record starting at byte offset fo.
func (r *Reader) readAt(fo int64) (*Entry, error) {
	buf := make([]byte, UtmpxSz)
	if _, err := r.f.ReadAt(buf, fo); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrDone
		}
		return nil, err
	}
	return decode(buf, fo)
}

// FindEntryBetweenDatetimeFilters advances from fo by UTMPX_SZ at a
// time, decoding each record's timestamp, until it finds one whose time
// lies in [after, before] or reaches EOF (ErrDone). It returns the
// offset just past the returned entry.
func (r *Reader) FindEntryBetweenDatetimeFilters(fo int64, after, before time.Time) (int64, *Entry, error) {
	for {
		e, err := r.readAt(fo)
		if err != nil {
			return 0, nil, err
		}
		next := fo + UtmpxSz
		if inRange(e.Time, after, before) {
			return next, e, nil
		}
		fo = next
	}
}

func inRange(t, after, before time.Time) bool {
	if !after.IsZero() && t.Before(after) {
		return false
	}
	if !before.IsZero() && t.After(before) {
		return false
	}
	return true
}
