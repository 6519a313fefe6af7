// Package line assembles logical text lines from a block package Reader,
// handling lines that span block boundaries.
package line

import (
	"errors"

	"github.com/logmerge/logmerge/block"
)

// LinePart is a contiguous byte range within one Block.
type LinePart struct {
	Block           *block.Block
	Begin, End      int // indices into Block.Bytes; End > Begin, End <= len(Bytes)
	FileOffsetBegin block.FileOffset
}

// Bytes returns the slice of the underlying block this part covers.
func (p LinePart) Bytes() []byte { return p.Block.Bytes[p.Begin:p.End] }

// Line is an ordered, non-empty sequence of LineParts forming one logical
// line, ending at '\n' or EOF.
type Line struct {
	Parts                          []LinePart
	FileOffsetBegin, FileOffsetEnd block.FileOffset
	endsWithNewline                bool
}

// Len returns the total byte length of the line, newline included if present.
func (l *Line) Len() int {
	n := 0
	for _, p := range l.Parts {
		n += p.End - p.Begin
	}
	return n
}

// Bytes concatenates the line's parts into a single buffer. This copies;
// callers on a hot path should iterate Parts directly when possible.
func (l *Line) Bytes() []byte {
	buf := make([]byte, 0, l.Len())
	for _, p := range l.Parts {
		buf = append(buf, p.Bytes()...)
	}
	return buf
}

// EndsWithNewline reports whether the line's final byte is '\n' (false
// only for the last line of a file lacking a trailing terminator).
func (l *Line) EndsWithNewline() bool { return l.endsWithNewline }

// ErrDone signals the requested offset is at or past end-of-file.
var ErrDone = errors.New("line: done, offset at or past end of file")
