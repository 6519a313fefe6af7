package syslogproc

import (
	"time"

	"github.com/logmerge/logmerge/block"
	"github.com/logmerge/logmerge/datetime"
	"github.com/logmerge/logmerge/line"
	"github.com/logmerge/logmerge/summary"
	"github.com/logmerge/logmerge/sysline"
)

// SyslogSzMax is the largest a single sysline is assumed to be, used to
// decide the block-zero sanity threshold per spec.md §4.5.
const SyslogSzMax = block.SyslogSzMax

// Validate is Stage 0: open the underlying file and confirm it is
// non-empty. Transitions to StageBlockZero on success.
func (p *Processor) Validate() error {
	if p.stage != StageValidate {
		return ErrOutOfSequence
	}
	br, err := block.New(p.path, p.ft, p.opts)
	if err != nil {
		p.fail(classifyOpenErr(err))
		return err
	}
	if br.FileSz() == 0 {
		br.Close()
		p.fail(fileErr{result: summary.FileErrEmpty, msg: "empty file"})
		return errEmptyFile
	}
	p.br = br
	p.lr = line.New(br)
	p.sr = sysline.New(p.lr, p.fb)
	p.stage = StageBlockZero
	return nil
}

// BlockZero is Stage 1: read block 0, require at least the minimum
// number of lines and syslines, and run the year fix-up pass if the
// pinned pattern captures no year. Transitions to StageFindDt.
func (p *Processor) BlockZero() error {
	if p.stage != StageBlockZero {
		return ErrOutOfSequence
	}
	n1, n2 := 1, 1
	if p.br.Blocksz() > SyslogSzMax {
		n1, n2 = 2, 2
	}

	blk, err := p.br.ReadBlock(0)
	if err != nil {
		return p.failIo(err)
	}
	blockEnd := block.FileOffset(blk.Len())

	var lines uint64
	fo := block.FileOffset(0)
	for fo < blockEnd {
		next, _, lerr := p.lr.FindLine(fo)
		if lerr == line.ErrDone {
			break
		}
		if lerr != nil {
			return p.failIo(lerr)
		}
		lines++
		fo = next
	}
	if lines < uint64(n1) {
		p.fail(fileErr{result: summary.FileErrNoLinesFound})
		return errNoLinesFound
	}

	var syslines uint64
	var pinned string
	fo = 0
	for fo < blockEnd {
		next, sl, serr := p.sr.FindSysline(fo)
		if serr == sysline.ErrDone {
			break
		}
		if serr != nil {
			return p.failIo(serr)
		}
		syslines++
		pinned = sl.PatternName
		if p.firstDt.IsZero() {
			p.firstDt = sl.Time
		}
		fo = next
	}
	if syslines < uint64(n2) {
		p.fail(fileErr{result: summary.FileErrNoSyslinesFound})
		return errNoSyslinesFound
	}

	if needsYearFixup(pinned) {
		if err := p.sr.FixupYears(p.br.ModTime()); err != nil {
			return p.failIo(err)
		}
	}

	p.stage = StageFindDt
	return nil
}

// needsYearFixup reports whether the named pattern's table entry lacks a
// year capture group.
func needsYearFixup(name string) bool {
	for _, pat := range datetime.Table {
		if pat.Name == name {
			return !pat.HasYear
		}
	}
	return false
}

// FindFirst is Stage 2: locate the earliest sysline whose DateTime lies
// in [after, before]. This degenerates to a linear forward scan rather
// than spec.md's suggested binary-style bracketed search: a true binary
// search requires random access to arbitrary sysline start offsets,
// which sequential decoders (gzip/xz/zstd/7z, per block.Reader's
// forward-only seqDecoder contract) cannot provide in general, so one
// implementation that works for every filetype was chosen over two (one
// fast-but-seekable-only, one slow fallback). Transitions to StageStream
// on success.
func (p *Processor) FindFirst() error {
	if p.stage != StageFindDt {
		return ErrOutOfSequence
	}
	fo := block.FileOffset(0)
	for {
		next, sl, err := p.sr.FindSysline(fo)
		if err == sysline.ErrDone {
			p.fail(fileErr{result: summary.FileErrNoSyslinesInDtRange})
			return errNoSyslinesInRange
		}
		if err != nil {
			return p.failIo(err)
		}
		if inRange(sl.Time, p.after, p.before) {
			p.nextFo = fo
			p.stage = StageStream
			return nil
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

// StreamNext is Stage 3: emit the next in-range sysline, or io.EOF-style
// done once the stream is exhausted or a sysline falls outside [after,
// before]. On every successful emit it drops blocks strictly below the
// emitted sysline's first block, per spec.md's drop discipline (§5):
// drop_block is only ever called with a block offset greater than any
// previously dropped one.
func (p *Processor) StreamNext() (*sysline.Sysline, bool, error) {
	if p.stage != StageStream {
		return nil, false, ErrOutOfSequence
	}
	next, sl, err := p.sr.FindSysline(p.nextFo)
	if err == sysline.ErrDone {
		p.stage = StageSummary
		return nil, false, nil
	}
	if err != nil {
		return nil, false, p.failIo(err)
	}
	if !inRange(sl.Time, p.after, p.before) {
		p.stage = StageSummary
		return nil, false, nil
	}

	p.syslineCount++
	p.lastDt = sl.Time
	p.nextFo = next

	firstBlock := p.br.BlockOffsetAt(sl.FileOffsetBegin)
	if firstBlock > 0 {
		dropUpTo := firstBlock - 1
		if !p.hasDropped || dropUpTo > p.lastDroppedBlock {
			start := block.BlockOffset(0)
			if p.hasDropped {
				start = p.lastDroppedBlock + 1
			}
			for bo := start; bo <= dropUpTo; bo++ {
				p.br.DropBlock(bo)
				p.blocksDropped++
			}
			p.lastDroppedBlock = dropUpTo
			p.hasDropped = true
		}
	}
	p.sr.DropSysline(sl.FileOffsetBegin)

	return sl, true, nil
}

// Close releases the underlying block.Reader.
func (p *Processor) Close() error {
	if p.br == nil {
		return nil
	}
	return p.br.Close()
}
