// Package block provides a uniform, block-addressed view over plain,
// gzip, xz, zstd, tar-member, and 7z-member log files.
package block

import "errors"

// BlockSz is the size, in bytes, of every block except possibly the last.
type BlockSz = uint64

// BlockOffset addresses a Block within the uncompressed byte stream:
// byte offset = BlockOffset * BlockSz.
type BlockOffset = uint64

// FileOffset is a byte offset into the uncompressed stream.
type FileOffset = uint64

const (
	// BlockszMin is the minimum permitted block size.
	BlockszMin BlockSz = 1
	// BlockszMax is the maximum permitted block size.
	BlockszMax BlockSz = 0xFFFFFF
	// BlockszDef is the default block size.
	BlockszDef BlockSz = 0xFFFF

	// SyslogSzMax is the largest a single syslog record is expected to be;
	// used by the processor to decide the stage-1 minimum line/sysline count.
	SyslogSzMax = 2048

	// defaultMaxUncompressedSize caps how large a gzip member's ISIZE-implied
	// uncompressed size may be before FileErrTooLarge is raised. gzip's ISIZE
	// trailer is only a mod-2^32 byte count, so a conservative cap (rather
	// than trusting ISIZE blindly above 4 GiB) is necessary; see spec §9.
	defaultMaxUncompressedSize = 8 << 30 // 8 GiB
)

// Block is an immutable slice of the uncompressed byte stream.
type Block struct {
	Offset BlockOffset
	Bytes  []byte
}

// Len returns the number of bytes in the block.
func (b *Block) Len() int { return len(b.Bytes) }

var (
	// ErrDone signals the requested offset is past end-of-file.
	ErrDone = errors.New("block: done, offset past end of file")

	// ErrTooLarge is returned when a compressed member's implied
	// uncompressed size exceeds the configured cap.
	ErrTooLarge = errors.New("block: uncompressed size exceeds cap")

	// ErrDecompress signals a malformed compressed stream.
	ErrDecompress = errors.New("block: decompression failed")

	// ErrWrongType signals that a file's content disagrees with its
	// presumed type (e.g. a ".gz" file too short to hold a gzip header and
	// trailer; a bad gzip header is reported as ErrDecompress instead).
	ErrWrongType = errors.New("block: file content does not match expected type")
)

// blockOffsetAt returns the block offset containing file offset fo.
func blockOffsetAt(fo FileOffset, blocksz BlockSz) BlockOffset {
	return fo / blocksz
}

// fileOffsetAt returns the first file offset within block bo.
func fileOffsetAt(bo BlockOffset, blocksz BlockSz) FileOffset {
	return bo * blocksz
}
