package sysline

import (
	"time"

	"github.com/logmerge/logmerge/block"
	"github.com/logmerge/logmerge/datetime"
	"github.com/logmerge/logmerge/line"
)

// Reader groups Lines from a line.Reader into Syslines, caching results
// in an authoritative map plus a rangeTree for O(log n) containment
// queries, per spec.md §4.4.
type Reader struct {
	lr   *line.Reader
	rec  *datetime.Recognizer
	fb   datetime.Fallback

	syslines map[block.FileOffset]*Sysline
	tree     rangeTree
	order    []*Sysline // insertion order, used by FixupYears
}

// New wraps a line.Reader with sysline grouping, using fb as the
// fallback year/timezone offset for patterns that don't capture one.
func New(lr *line.Reader, fb datetime.Fallback) *Reader {
	return &Reader{
		lr:       lr,
		rec:      datetime.New(fb),
		fb:       fb,
		syslines: make(map[block.FileOffset]*Sysline),
	}
}

// PinnedPattern reports the datetime pattern currently pinned for this
// file, or "" if no sysline has been found yet.
func (r *Reader) PinnedPattern() string { return r.rec.Pinned() }

// FindSysline returns the Sysline containing or starting at/after fo,
// and the offset just past its last byte. Returns ErrDone once fo is at
// or past the file's end.
func (r *Reader) FindSysline(fo block.FileOffset) (foNext block.FileOffset, sl *Sysline, err error) {
	if cached := r.tree.query(fo); cached != nil {
		return cached.FileOffsetEnd + 1, cached, nil
	}

	startFo, firstLine, m, err := r.findStartLine(fo)
	if err != nil {
		return 0, nil, err
	}

	lines := []*line.Line{firstLine}
	dtBegin, dtEnd := m.Begin, m.End
	ts := m.Time
	patName := m.PatternName

	next := startFo + block.FileOffset(firstLine.Len())
	for {
		lnNext, ln, lerr := r.lr.FindLine(next)
		if lerr == line.ErrDone {
			break
		}
		if lerr != nil {
			return 0, nil, lerr
		}
		if _, matchErr := r.rec.Find(ln.Bytes()); matchErr == nil {
			// This line starts the next sysline; stop before it.
			break
		}
		lines = append(lines, ln)
		next = lnNext
	}

	end := lines[len(lines)-1].FileOffsetEnd
	sl = &Sysline{
		Lines:           lines,
		DtBegin:         dtBegin,
		DtEnd:           dtEnd,
		Time:            ts,
		PatternName:     patName,
		FileOffsetBegin: startFo,
		FileOffsetEnd:   end,
	}
	r.syslines[startFo] = sl
	r.tree.insert(startFo, end+1, sl)
	r.order = append(r.order, sl)

	return end + 1, sl, nil
}

// findStartLine returns the offset, Line, and datetime Match of the line
// that begins the sysline containing fo: the line at/after fo if it
// itself carries a recognized timestamp, otherwise the nearest
// timestamp-bearing line strictly before it (continuation lines walked
// backward), per spec.md §4.4 steps 1-2.
func (r *Reader) findStartLine(fo block.FileOffset) (block.FileOffset, *line.Line, datetime.Match, error) {
	next, ln, err := r.lr.FindLine(fo)
	if err == line.ErrDone {
		return 0, nil, datetime.Match{}, ErrDone
	}
	if err != nil {
		return 0, nil, datetime.Match{}, err
	}
	_ = next

	begin := ln.FileOffsetBegin
	for {
		if m, merr := r.rec.Find(ln.Bytes()); merr == nil {
			return begin, ln, m, nil
		}
		if begin == 0 {
			// No timestamp anywhere in the file up to this point; treat
			// the very first line as a degenerate sysline start with a
			// zero-value Match so callers still make progress.
			return begin, ln, datetime.Match{}, nil
		}
		prevNext, prevLn, perr := r.lr.FindLine(begin - 1)
		if perr != nil {
			return 0, nil, datetime.Match{}, perr
		}
		_ = prevNext
		ln = prevLn
		begin = ln.FileOffsetBegin
	}
}

// DropSysline releases the sysline beginning at fo from both caches and
// requests drops of its component lines from the underlying line.Reader,
// per spec.md §4.4.
func (r *Reader) DropSysline(fo block.FileOffset) {
	sl, ok := r.syslines[fo]
	delete(r.syslines, fo)
	r.tree.remove(fo)
	if !ok {
		return
	}
	for _, ln := range sl.Lines {
		r.lr.DropLine(ln.FileOffsetBegin)
	}
}

// FixupYears runs the reverse year-correction sweep spec.md §4.4 calls
// for when the pinned pattern captures no year: it seeds the year from
// the file's modification time (assumed to anchor the last sysline),
// then walks backward through the already-collected syslines,
// decrementing the year on every backward time jump greater than 25
// hours between consecutive entries. All cached syslines are discarded
// first; after the sweep, corrected Syslines are reinserted so normal
// forward processing can resume.
func (r *Reader) FixupYears(mtime time.Time) error {
	r.syslines = make(map[block.FileOffset]*Sysline)
	r.tree = rangeTree{}
	r.order = nil

	r.fb.Year = mtime.Year()
	r.rec = datetime.New(r.fb)

	var collected []*Sysline
	fo := block.FileOffset(0)
	for {
		_, sl, err := r.FindSysline(fo)
		if err == ErrDone {
			break
		}
		if err != nil {
			return err
		}
		collected = append(collected, sl)
		fo = sl.FileOffsetEnd + 1
	}
	if len(collected) == 0 {
		return nil
	}

	year := mtime.Year()
	collected[len(collected)-1].Time = replaceYear(collected[len(collected)-1].Time, year)
	for i := len(collected) - 2; i >= 0; i-- {
		candidate := replaceYear(collected[i].Time, year)
		if candidate.Sub(collected[i+1].Time) > 25*time.Hour {
			year--
			candidate = replaceYear(collected[i].Time, year)
		}
		collected[i].Time = candidate
	}

	r.syslines = make(map[block.FileOffset]*Sysline)
	r.tree = rangeTree{}
	for _, sl := range collected {
		r.syslines[sl.FileOffsetBegin] = sl
		r.tree.insert(sl.FileOffsetBegin, sl.FileOffsetEnd+1, sl)
	}
	r.order = collected
	return nil
}

func replaceYear(t time.Time, year int) time.Time {
	return time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
