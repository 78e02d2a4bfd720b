package assembler

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"mediathek/internal/media/probe"
)

// snapshotComponent marks filesystem-snapshot directories that must never be
// scanned.
const snapshotComponent = "#snapshot"

// ScanFiles enumerates the regular media files under the given roots in
// directory-traversal order. Dotfiles, snapshot directories, and files
// without a video or image extension are skipped. Duplicate roots are
// deduplicated; missing roots surface as errors.
func ScanFiles(roots []string) ([]string, error) {
	var paths []string
	seenRoots := map[string]struct{}{}
	seenPaths := map[string]struct{}{}

	for _, root := range roots {
		root = filepath.Clean(root)
		if _, ok := seenRoots[root]; ok {
			continue
		}
		seenRoots[root] = struct{}{}

		err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			name := entry.Name()
			if entry.IsDir() {
				if path != root && strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				if name == snapshotComponent {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasPrefix(name, ".") {
				return nil
			}
			if !entry.Type().IsRegular() {
				return nil
			}
			if !probe.IsMediaPath(path) {
				return nil
			}
			if _, ok := seenPaths[path]; ok {
				return nil
			}
			seenPaths[path] = struct{}{}
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}

// sortBySizeDesc orders members largest-first for elections and tie-breaks.
func sortBySizeDesc(files []probe.ProbedFile) {
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Size > files[j].Size
	})
}
