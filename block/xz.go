package block

import (
	"bytes"
	"io"
	"os"

	"github.com/ulikunitz/xz"
)

// xzSeqDecoder implements the "decompress the whole member once" choice
// spec §4.1 explicitly permits for xz: subsequent block reads are served
// from an in-memory buffer via next(), keeping the same seqDecoder shape
// as the gzip/zstd/7z decoders so Reader.readSequential can drive all of
// them identically.
type xzSeqDecoder struct {
	buf    *bytes.Reader
	closed bool
}

func newXzSeqDecoder(f *os.File, maxSize int64) (*xzSeqDecoder, int64, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, 0, err
	}
	xr, err := xz.NewReader(f)
	if err != nil {
		return nil, 0, err
	}
	data, err := io.ReadAll(io.LimitReader(xr, maxSize+1))
	if err != nil {
		return nil, 0, err
	}
	if int64(len(data)) > maxSize {
		return nil, 0, ErrTooLarge
	}
	return &xzSeqDecoder{buf: bytes.NewReader(data)}, int64(len(data)), nil
}

func (d *xzSeqDecoder) next(blocksz BlockSz) ([]byte, error) {
	buf := make([]byte, blocksz)
	n, err := io.ReadFull(d.buf, buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == io.EOF {
		return nil, nil
	}
	return nil, err
}

func (d *xzSeqDecoder) close() error { d.closed = true; return nil }
