package line

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/logmerge/logmerge/block"
)

const lookupCacheSz = 8

// Reader assembles Lines on top of a block.Reader, reconstructing lines
// that may span block boundaries. Two caches are kept, as spec §4.2 calls
// for: an authoritative map keyed by fileoffset_begin, and a small LRU
// keyed by whatever offset callers actually look up (which need not be a
// line's begin offset).
type Reader struct {
	br *block.Reader

	lines    map[block.FileOffset]*Line
	lookup   *lru.Cache[block.FileOffset, *Line]
	hit, mis uint64
	put      uint64
}

// New wraps a block.Reader with line assembly.
func New(br *block.Reader) *Reader {
	c, _ := lru.New[block.FileOffset, *Line](lookupCacheSz)
	return &Reader{br: br, lines: make(map[block.FileOffset]*Line), lookup: c}
}

// Stats reports the lookup LRU's hit/miss counters, and as Put the number
// of new Lines added to the authoritative map.
func (r *Reader) Stats() block.Stats { return block.Stats{Hit: r.hit, Miss: r.mis, Put: r.put} }

// byteAt returns the byte at file offset fo via the block reader.
func (r *Reader) byteAt(fo block.FileOffset) (byte, error) {
	bo := r.br.BlockOffsetAt(fo)
	blk, err := r.br.ReadBlock(bo)
	if err != nil {
		return 0, err
	}
	idx := int(fo - r.br.FileOffsetAt(bo))
	return blk.Bytes[idx], nil
}

// partsFor builds the LineParts covering [begin, end] inclusive, fetching
// blocks as needed.
func (r *Reader) partsFor(begin, end block.FileOffset) ([]LinePart, error) {
	var parts []LinePart
	fo := begin
	for fo <= end {
		bo := r.br.BlockOffsetAt(fo)
		blk, err := r.br.ReadBlock(bo)
		if err != nil {
			return nil, err
		}
		blockBegin := r.br.FileOffsetAt(bo)
		startIdx := int(fo - blockBegin)
		blockEndFo := blockBegin + block.FileOffset(blk.Len())
		stopFo := end + 1
		if blockEndFo < stopFo {
			stopFo = blockEndFo
		}
		endIdx := int(stopFo - blockBegin)
		parts = append(parts, LinePart{
			Block:           blk,
			Begin:           startIdx,
			End:             endIdx,
			FileOffsetBegin: fo,
		})
		fo = blockBegin + block.FileOffset(endIdx)
	}
	return parts, nil
}

// FindLine returns the Line containing byte offset fo, and the offset
// just past its terminator. Returns line.ErrDone when fo is at or past
// the file size.
func (r *Reader) FindLine(fo block.FileOffset) (foNext block.FileOffset, ln *Line, err error) {
	if filesz := r.br.FileSz(); filesz > 0 && fo >= filesz {
		return 0, nil, ErrDone
	}

	if cached, ok := r.lookup.Get(fo); ok {
		r.hit++
		return cached.FileOffsetEnd + 1, cached, nil
	}
	r.mis++

	// containment probe against the authoritative map: O(n) here is
	// acceptable since the map is small relative to the interval tree
	// SyslineReader keeps; BlockReader callers mostly hit the lookup LRU.
	for begin, existing := range r.lines {
		if fo >= begin && fo <= existing.FileOffsetEnd {
			r.lookup.Add(fo, existing)
			return existing.FileOffsetEnd + 1, existing, nil
		}
	}

	begin, err := r.walkBackToLineStart(fo)
	if err != nil {
		return 0, nil, err
	}
	end, hasNewline, err := r.walkForwardToLineEnd(fo)
	if err != nil {
		return 0, nil, err
	}

	parts, err := r.partsFor(begin, end)
	if err != nil {
		return 0, nil, err
	}
	ln = &Line{
		Parts:           parts,
		FileOffsetBegin: begin,
		FileOffsetEnd:   end,
		endsWithNewline: hasNewline,
	}
	r.lines[begin] = ln
	r.put++
	r.lookup.Add(fo, ln)

	next := end + 1
	return next, ln, nil
}

// walkBackToLineStart finds the file offset one past the nearest '\n'
// strictly before fo, or 0 if none exists.
func (r *Reader) walkBackToLineStart(fo block.FileOffset) (block.FileOffset, error) {
	if fo == 0 {
		return 0, nil
	}
	pos := fo
	for pos > 0 {
		b, err := r.byteAt(pos - 1)
		if err != nil {
			return 0, err
		}
		if b == '\n' {
			return pos, nil
		}
		pos--
	}
	return 0, nil
}

// walkForwardToLineEnd finds the offset of the terminating '\n' at or
// after fo, or the last byte of the file if none exists before EOF.
func (r *Reader) walkForwardToLineEnd(fo block.FileOffset) (end block.FileOffset, hasNewline bool, err error) {
	filesz := r.br.FileSz()
	pos := fo
	for {
		if filesz > 0 && pos >= filesz {
			return pos - 1, false, nil
		}
		b, err := r.byteAt(pos)
		if err == block.ErrDone {
			return pos - 1, false, nil
		}
		if err != nil {
			return 0, false, err
		}
		if b == '\n' {
			return pos, true, nil
		}
		pos++
	}
}

// DropLine releases the line beginning at fo from the authoritative map.
func (r *Reader) DropLine(fo block.FileOffset) {
	delete(r.lines, fo)
	// The lookup LRU is keyed by arbitrary probe offsets, not necessarily
	// fo; entries referencing a dropped line simply age out naturally.
}
