package block

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/klauspost/pgzip"
)

// gzipUncompressedSize reads the RFC 1952 ISIZE trailer: the last 4 bytes
// of the gzip member, a little-endian uint32 holding the uncompressed size
// modulo 2^32. Read directly off the file rather than through the
// decompressor, since it's a fixed trailer position independent of however
// many blocks the stream is organized into.
func gzipUncompressedSize(f *os.File) (uint32, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if fi.Size() < 18 { // minimal gzip: 10-byte header + 8-byte trailer
		return 0, io.ErrUnexpectedEOF
	}
	var trailer [4]byte
	if _, err := f.ReadAt(trailer[:], fi.Size()-4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(trailer[:]), nil
}

// gzipSeqDecoder is the sequential-only gzip decoder described in spec
// §4.1: each call to next() advances the pgzip reader by exactly one
// block, never rewinding. A zero-byte read on a non-empty remaining
// stream is treated as a hard error rather than EOF, per spec.
type gzipSeqDecoder struct {
	r *pgzip.Reader
}

func newGzipSeqDecoder(f *os.File) (*gzipSeqDecoder, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	gr, err := pgzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	return &gzipSeqDecoder{r: gr}, nil
}

func (d *gzipSeqDecoder) next(blocksz BlockSz) ([]byte, error) {
	buf := make([]byte, blocksz)
	n, err := io.ReadFull(d.r, buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == io.EOF {
		return nil, nil
	}
	if err == io.ErrUnexpectedEOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// n == 0, err == nil: a zero-byte read on a stream that is not yet
	// exhausted is a hard decoder error, not progress.
	return nil, io.ErrNoProgress
}

func (d *gzipSeqDecoder) close() error { return d.r.Close() }
