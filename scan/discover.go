package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SourceSuffix is the file name suffix of source documents.
const SourceSuffix = ".json"

// Discover returns every file below root whose name ends with SourceSuffix.
// Paths are returned in lexical walk order, which is stable for a given tree.
//
// Entries that cannot be read are skipped and the walk continues; their
// errors are joined into the returned error alongside the paths that were
// found. Only an unreadable root yields no paths.
func Discover(root string) ([]string, error) {
	rels, err := discover(os.DirFS(root))
	paths := make([]string, len(rels))
	for i, rel := range rels {
		paths[i] = filepath.Join(root, filepath.FromSlash(rel))
	}
	if err != nil {
		return paths, fmt.Errorf("walk %s: %w", root, err)
	}
	return paths, nil
}

func discover(fsys fs.FS) ([]string, error) {
	var paths []string
	var skipped []error
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == "." {
				return err
			}
			skipped = append(skipped, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), SourceSuffix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, errors.Join(skipped...)
}
