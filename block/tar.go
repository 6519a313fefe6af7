package block

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
)

// locateTarMember scans a tar archive's headers once, looking for subpath,
// and returns the byte offset within the archive file where the member's
// data begins (tr.Next() positions the underlying reader right after the
// header, which for os.File-backed readers corresponds to a stable file
// offset we can capture and reuse for random access via ReadAt), plus its
// size. archive/tar is stdlib's job here — the pack contains no
// third-party ustar codec, only archive/tar usage throughout.
func locateTarMember(f *os.File, subpath string) (offset int64, size int64, err error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, 0, err
	}
	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return 0, 0, fmt.Errorf("block: tar member %q not found", subpath)
		}
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %v", ErrDecompress, err)
		}
		if hdr.Typeflag != tar.TypeReg && hdr.Typeflag != tar.TypeRegA {
			continue
		}
		if hdr.Name != subpath {
			continue
		}
		pos, err := f.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, 0, err
		}
		return pos, hdr.Size, nil
	}
}

// ListTarMembers enumerates the regular-file entries in a tar (optionally
// gzip/zstd-compressed outer layer is NOT handled here; callers needing
// that should decompress first) archive, for CLI path discovery.
func ListTarMembers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecompress, err)
		}
		if hdr.Typeflag == tar.TypeReg || hdr.Typeflag == tar.TypeRegA {
			names = append(names, hdr.Name)
		}
	}
	return names, nil
}
