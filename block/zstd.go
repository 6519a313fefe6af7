package block

import (
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// zstdSeqDecoder supports the supplemental .zst/.zstd input format (see
// SPEC_FULL.md §2); it follows the same sequential-replay-with-cache model
// as gzip, since zstd frames are likewise not arbitrarily seekable without
// a seek-table the producer may not have written.
type zstdSeqDecoder struct {
	dec *zstd.Decoder
}

func newZstdSeqDecoder(f *os.File, maxSize int64) (*zstdSeqDecoder, int64, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, 0, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, 0, err
	}
	// The frame header's content-size field is not read: the size is
	// always reported as 0 (unknown), and the caller discovers EOF via a
	// nil next() result.
	sz := int64(0)
	return &zstdSeqDecoder{dec: dec}, sz, nil
}

func (d *zstdSeqDecoder) next(blocksz BlockSz) ([]byte, error) {
	buf := make([]byte, blocksz)
	n, err := io.ReadFull(d.dec, buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == io.EOF {
		return nil, nil
	}
	return nil, err
}

func (d *zstdSeqDecoder) close() error { d.dec.Close(); return nil }
