package cmd

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/logmerge/logmerge/block"
	"github.com/spf13/afero"
)

// inputFile is one file or archive member this run will process.
type inputFile struct {
	path string
	ft   block.FileType
}

var fs afero.Fs = afero.NewOsFs()

// collectFiles expands the CLI path arguments into concrete inputFiles:
// directories are scanned one level for regular files (mirroring the
// teacher's gatherLogFiles, which likewise doesn't recurse by default),
// "-" reads newline-delimited paths from stdin, and tar/7z archives are
// expanded into one inputFile per member.
func collectFiles(args []string) ([]inputFile, error) {
	var out []inputFile
	for _, a := range args {
		if a == "-" {
			paths, err := readStdinPaths()
			if err != nil {
				return nil, err
			}
			more, err := collectFiles(paths)
			if err != nil {
				return nil, err
			}
			out = append(out, more...)
			continue
		}
		// A discovery-time failure on one path (doesn't exist, no
		// permission, unsupported type) is never fatal to the whole run,
		// per spec.md §7 -- warn on stderr and skip it, letting every
		// other path still get processed.
		fi, err := fs.Stat(a)
		if err != nil {
			log.Printf("[WARN] skipping %s: %v", a, err)
			continue
		}
		if fi.IsDir() {
			entries, err := gatherLogFiles(a)
			if err != nil {
				log.Printf("[WARN] skipping %s: %v", a, err)
				continue
			}
			out = append(out, entries...)
			continue
		}
		ft := block.Detect(a)
		switch ft {
		case block.TypeTar:
			members, err := block.ListTarMembers(a)
			if err != nil {
				log.Printf("[WARN] skipping %s: %v", a, err)
				continue
			}
			for _, m := range members {
				out = append(out, inputFile{path: a + ":" + m, ft: block.TypeTar})
			}
		case block.TypeSevenZip:
			members, err := block.ListSevenZipMembers(a)
			if err != nil {
				log.Printf("[WARN] skipping %s: %v", a, err)
				continue
			}
			for _, m := range members {
				out = append(out, inputFile{path: a + ":" + m, ft: block.TypeSevenZip})
			}
		default:
			out = append(out, inputFile{path: a, ft: ft})
		}
	}
	return out, nil
}

// gatherLogFiles lists the regular files directly inside dir, sorted for
// deterministic pathID assignment.
func gatherLogFiles(dir string) ([]inputFile, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("cmd: reading directory %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	var out []inputFile
	for _, name := range names {
		full := filepath.Join(dir, name)
		out = append(out, inputFile{path: full, ft: block.Detect(full)})
	}
	if len(out) == 0 {
		log.Printf("[WARN] %s contains no regular files", dir)
	}
	return out, nil
}

func readStdinPaths() ([]string, error) {
	var paths []string
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	return paths, sc.Err()
}
