package block

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileType enumerates the kinds of files a Reader can expose as blocks.
type FileType int

const (
	TypePlain FileType = iota
	TypeGzip
	TypeXz
	TypeZstd
	TypeTar
	TypeSevenZip
)

// Options configures a Reader.
type Options struct {
	// Blocksz is the block size in bytes; must be in [BlockszMin, BlockszMax].
	Blocksz BlockSz
	// Subpath names the member to read for TypeTar/TypeSevenZip files,
	// e.g. "archive.tar:var/log/syslog" -> Subpath == "var/log/syslog".
	Subpath string
	// MaxUncompressedSize caps a compressed member's allowed uncompressed
	// size; zero means defaultMaxUncompressedSize.
	MaxUncompressedSize int64
}

// Reader exposes one file (or one archive member) as a sequence of
// fixed-size Blocks, decompressing/unarchiving transparently as needed.
// A Reader is not safe for concurrent use: spec requires that concurrent
// decompression never occur on the same Reader.
type Reader struct {
	path     string
	subpath  string
	filetype FileType
	blocksz  BlockSz
	maxSize  int64

	file    *os.File
	modTime time.Time

	filesz    FileOffset
	fileszSet bool

	blocks map[BlockOffset]*Block
	cache  *blockCache

	// decompressor state, populated lazily by the per-type openers below.
	seq seqDecoder

	// tar/7z member addressing.
	memberOffset int64 // plain byte offset of member within the archive file (tar only)

	closed bool
}

// seqDecoder is the minimal interface the gzip/xz/zstd/7z openers satisfy:
// a forward-only reader of the decompressed byte stream. It does not track
// its own block position; readSequential derives that from r.blocks.
type seqDecoder interface {
	// next reads exactly one block's worth of bytes (or fewer at EOF).
	next(blocksz BlockSz) ([]byte, error)
	close() error
}

// Detect guesses a FileType from a filename's extension. It does not open
// or read the file; callers should treat this as a hint, not ground truth.
func Detect(name string) FileType {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar"):
		// Compressed tar variants (.tar.gz, .tgz, .tar.zst) are not
		// addressed here: spec's tar contract assumes seeking directly to
		// a known archive byte offset, which a compressed outer stream
		// doesn't support without decompressing the whole thing up front.
		// Only the uncompressed ustar form gets member-level random access.
		return TypeTar
	case strings.HasSuffix(lower, ".7z"):
		return TypeSevenZip
	case strings.HasSuffix(lower, ".gz"):
		return TypeGzip
	case strings.HasSuffix(lower, ".xz"):
		return TypeXz
	case strings.HasSuffix(lower, ".zst"), strings.HasSuffix(lower, ".zstd"):
		return TypeZstd
	default:
		return TypePlain
	}
}

// SplitSubpath splits "archive.tar:member/path" into ("archive.tar",
// "member/path", true). Returns ok=false when there is no member suffix.
func SplitSubpath(path string) (archive, member string, ok bool) {
	idx := strings.Index(path, ":")
	if idx < 0 {
		return path, "", false
	}
	return path[:idx], path[idx+1:], true
}

// New opens path as filetype ft and returns a Reader. Filesystem errors
// (permission, not-a-file) surface here, per spec §4.1.
func New(path string, ft FileType, opts Options) (*Reader, error) {
	if opts.Blocksz < BlockszMin || opts.Blocksz > BlockszMax {
		return nil, fmt.Errorf("block: blocksz %d out of range [%d, %d]", opts.Blocksz, BlockszMin, BlockszMax)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if fi.IsDir() {
		f.Close()
		return nil, fmt.Errorf("block: %s is a directory, not a file", path)
	}
	maxSize := opts.MaxUncompressedSize
	if maxSize <= 0 {
		maxSize = defaultMaxUncompressedSize
	}
	r := &Reader{
		path:     path,
		subpath:  opts.Subpath,
		filetype: ft,
		blocksz:  opts.Blocksz,
		maxSize:  maxSize,
		file:     f,
		modTime:  fi.ModTime(),
		blocks:   make(map[BlockOffset]*Block),
		cache:    newBlockCache(),
	}

	switch ft {
	case TypePlain:
		r.filesz = FileOffset(fi.Size())
	case TypeGzip:
		sz, err := gzipUncompressedSize(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %v", ErrWrongType, err)
		}
		if int64(sz) > maxSize {
			f.Close()
			return nil, ErrTooLarge
		}
		r.filesz = FileOffset(sz)
		dec, err := newGzipSeqDecoder(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %v", ErrDecompress, err)
		}
		r.seq = dec
	case TypeXz:
		dec, sz, err := newXzSeqDecoder(f, maxSize)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %v", ErrDecompress, err)
		}
		r.seq = dec
		r.filesz = FileOffset(sz)
	case TypeZstd:
		dec, sz, err := newZstdSeqDecoder(f, maxSize)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %v", ErrDecompress, err)
		}
		r.seq = dec
		r.filesz = FileOffset(sz)
	case TypeTar:
		off, sz, err := locateTarMember(f, r.subpath)
		if err != nil {
			f.Close()
			return nil, err
		}
		r.memberOffset = off
		r.filesz = FileOffset(sz)
	case TypeSevenZip:
		dec, sz, err := newSevenZipSeqDecoder(path, r.subpath, maxSize)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %v", ErrDecompress, err)
		}
		r.seq = dec
		r.filesz = FileOffset(sz)
	default:
		f.Close()
		return nil, fmt.Errorf("block: unknown filetype %v", ft)
	}
	return r, nil
}

// FileSz returns the uncompressed size, when known.
func (r *Reader) FileSz() FileOffset { return r.filesz }

// ModTime returns the underlying file's modification time, used by the
// datetime recognizer as a fallback-year source.
func (r *Reader) ModTime() time.Time { return r.modTime }

// Path reports the opened path (and, for archive members, the binding).
func (r *Reader) Path() string {
	if r.subpath != "" {
		return r.path + ":" + r.subpath
	}
	return r.path
}

// Blocksz reports the configured block size.
func (r *Reader) Blocksz() BlockSz { return r.blocksz }

// BlockOffsetAt returns the block offset containing file offset fo.
func (r *Reader) BlockOffsetAt(fo FileOffset) BlockOffset { return blockOffsetAt(fo, r.blocksz) }

// FileOffsetAt returns the first file offset of block bo.
func (r *Reader) FileOffsetAt(bo BlockOffset) FileOffset { return fileOffsetAt(bo, r.blocksz) }

// LastBlockOffset returns the block offset of the final block, given a
// known filesz. Only meaningful once FileSz() > 0.
func (r *Reader) LastBlockOffset() BlockOffset {
	if r.filesz == 0 {
		return 0
	}
	return BlockOffset((r.filesz - 1) / r.blocksz)
}

// ReadBlock returns the block at offset bo, or ErrDone if bo is past EOF.
func (r *Reader) ReadBlock(bo BlockOffset) (*Block, error) {
	if _, ok := r.cache.get(bo); ok {
		return r.blocks[bo], nil
	}
	if b, ok := r.blocks[bo]; ok {
		r.cache.add(b)
		return b, nil
	}

	fo := r.FileOffsetAt(bo)
	if r.filesz > 0 && fo >= r.filesz {
		return nil, ErrDone
	}

	var data []byte
	var err error
	switch r.filetype {
	case TypePlain:
		data, err = r.readPlain(fo)
	case TypeTar:
		data, err = r.readTarBlock(fo)
	case TypeGzip, TypeXz, TypeZstd, TypeSevenZip:
		data, err = r.readSequential(bo)
	default:
		return nil, fmt.Errorf("block: unsupported filetype %v", r.filetype)
	}
	if err != nil {
		return nil, err
	}
	if data == nil {
		if !r.fileszSet && r.filesz == 0 {
			// Formats whose size isn't known up front (zstd) learn it
			// here, at first EOF.
			r.filesz = fo
			r.fileszSet = true
		}
		return nil, ErrDone
	}

	b := &Block{Offset: bo, Bytes: data}
	r.blocks[bo] = b
	r.cache.add(b)
	return b, nil
}

// readPlain implements the random-access plain-file case.
func (r *Reader) readPlain(fo FileOffset) ([]byte, error) {
	buf := make([]byte, r.blocksz)
	n, err := r.file.ReadAt(buf, int64(fo))
	if n == 0 {
		if err != nil && err.Error() != "EOF" {
			return nil, err
		}
		return nil, nil
	}
	return buf[:n], nil
}

// readSequential drives the shared sequential-decoder state machine used
// by gzip/xz/zstd/7z: Fresh -> Decoding(next_bo=k) -> Done|Err.
// A request for bo below the decoder position (one past the highest block
// in r.blocks, see highestContiguousNext) is served from the cache by the
// caller (ReadBlock checks r.blocks first); this path only ever advances
// forward, storing every intermediate block, exactly as spec §4.1 requires.
func (r *Reader) readSequential(bo BlockOffset) ([]byte, error) {
	next := BlockOffset(0)
	if len(r.blocks) > 0 {
		next = r.highestContiguousNext()
	}
	if bo < next {
		// Already-decoded blocks are always in r.blocks; reaching here
		// means the block was dropped earlier. Sequential decoders can't
		// rewind, so this is a hard miss rather than a silent re-decode.
		return nil, fmt.Errorf("block: offset %d precedes decoder position %d after drop", bo, next)
	}
	var last []byte
	for cur := next; cur <= bo; cur++ {
		data, err := r.seq.next(r.blocksz)
		if err != nil {
			return nil, err
		}
		if data == nil {
			if cur == bo {
				return nil, nil
			}
			return nil, ErrDone
		}
		if cur != bo {
			blk := &Block{Offset: cur, Bytes: data}
			r.blocks[cur] = blk
			r.cache.add(blk)
		}
		last = data
	}
	return last, nil
}

// highestContiguousNext returns one past the highest block offset known to
// be decoded, used to resume the sequential decoder.
func (r *Reader) highestContiguousNext() BlockOffset {
	var max BlockOffset
	found := false
	for bo := range r.blocks {
		if !found || bo > max {
			max = bo
			found = true
		}
	}
	if !found {
		return 0
	}
	return max + 1
}

// readTarBlock seeks within the bound archive member.
func (r *Reader) readTarBlock(fo FileOffset) ([]byte, error) {
	buf := make([]byte, r.blocksz)
	n, err := r.file.ReadAt(buf, r.memberOffset+int64(fo))
	if n == 0 {
		if err != nil && err.Error() != "EOF" {
			return nil, err
		}
		return nil, nil
	}
	return buf[:n], nil
}

// DropBlock releases the block at offset bo from the authoritative map
// and the LRU. Per spec, this is advisory and callers must only pass
// monotonically non-decreasing offsets across calls on one Reader.
func (r *Reader) DropBlock(bo BlockOffset) {
	delete(r.blocks, bo)
	r.cache.remove(bo)
}

// CacheStats reports the block LRU's hit/miss/put counters.
func (r *Reader) CacheStats() Stats { return r.cache.stats() }

// Close releases the underlying file handle and any decoder resources.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.seq != nil {
		r.seq.close()
	}
	return r.file.Close()
}

// baseName is a small helper shared by callers that want a display name
// for prefix rendering without pulling in path/filepath everywhere.
func baseName(path string) string { return filepath.Base(path) }
