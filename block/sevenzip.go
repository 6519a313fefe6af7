package block

import (
	"fmt"
	"io"

	"github.com/bodgit/sevenzip"
)

// sevenZipSeqDecoder supports the supplemental .7z archive format (see
// SPEC_FULL.md §2). 7z's block-compressed solid streams aren't seekable
// member-by-member, so like xz we decode the named member fully into
// memory once, then serve blocks from that buffer.
type sevenZipSeqDecoder struct {
	data []byte
	pos  int64
}

func newSevenZipSeqDecoder(archivePath, subpath string, maxSize int64) (*sevenZipSeqDecoder, int64, error) {
	rc, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return nil, 0, err
	}
	defer rc.Close()

	for _, f := range rc.File {
		if f.Name != subpath {
			continue
		}
		rd, err := f.Open()
		if err != nil {
			return nil, 0, err
		}
		defer rd.Close()

		data, err := io.ReadAll(io.LimitReader(rd, maxSize+1))
		if err != nil {
			return nil, 0, err
		}
		if int64(len(data)) > maxSize {
			return nil, 0, ErrTooLarge
		}
		return &sevenZipSeqDecoder{data: data}, int64(len(data)), nil
	}
	return nil, 0, fmt.Errorf("block: 7z member %q not found in %s", subpath, archivePath)
}

func (d *sevenZipSeqDecoder) next(blocksz BlockSz) ([]byte, error) {
	if d.pos >= int64(len(d.data)) {
		return nil, nil
	}
	end := d.pos + int64(blocksz)
	if end > int64(len(d.data)) {
		end = int64(len(d.data))
	}
	out := d.data[d.pos:end]
	d.pos = end
	return out, nil
}

func (d *sevenZipSeqDecoder) close() error { return nil }

// ListSevenZipMembers enumerates regular-file entries in a 7z archive, for
// CLI path discovery.
func ListSevenZipMembers(path string) ([]string, error) {
	rc, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var names []string
	for _, f := range rc.File {
		if !f.FileInfo().IsDir() {
			names = append(names, f.Name)
		}
	}
	return names, nil
}
