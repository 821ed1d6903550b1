// Package discover walks a document root and selects the files worth
// ingesting by extension.
package discover

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Files returns the absolute paths of all files under root whose extension
// (case-insensitive) is in the allowed set. Subdirectories are traversed to
// arbitrary depth in lexical order, so the result is reproducible for a
// fixed tree. A missing root is not an error: there is simply nothing to
// index yet.
func Files(root string, allowed map[string]bool) ([]string, error) {
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var paths []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if allowed[ext] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
