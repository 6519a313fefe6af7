// Package sysline groups consecutive Lines into Syslines — one or more
// lines whose first line carries a recognized timestamp and whose
// continuation lines do not — per spec.md §4.4.
package sysline

import (
	"errors"
	"time"

	"github.com/logmerge/logmerge/block"
	"github.com/logmerge/logmerge/line"
)

// Sysline is an ordered, non-empty sequence of Lines. DtBegin/DtEnd are
// byte offsets of the timestamp within the first line's bytes.
type Sysline struct {
	Lines                          []*line.Line
	DtBegin, DtEnd                 int
	Time                           time.Time
	PatternName                    string
	FileOffsetBegin, FileOffsetEnd block.FileOffset
}

// Bytes concatenates every component line's bytes.
func (s *Sysline) Bytes() []byte {
	buf := make([]byte, 0, s.Len())
	for _, ln := range s.Lines {
		buf = append(buf, ln.Bytes()...)
	}
	return buf
}

// Len returns the total byte length across all component lines.
func (s *Sysline) Len() int {
	n := 0
	for _, ln := range s.Lines {
		n += ln.Len()
	}
	return n
}

// FirstLine returns the sysline's timestamp-bearing first line.
func (s *Sysline) FirstLine() *line.Line { return s.Lines[0] }

// EndsWithNewline reports whether the sysline's final byte is '\n'.
func (s *Sysline) EndsWithNewline() bool {
	return s.Lines[len(s.Lines)-1].EndsWithNewline()
}

// ErrDone signals the requested offset is at or past end-of-file.
var ErrDone = errors.New("sysline: done, offset at or past end of file")
