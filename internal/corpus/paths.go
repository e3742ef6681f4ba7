// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const defaultExtension = "json"

// EnumeratePaths returns every non-directory entry under root whose name ends with
// "."+extension, descending into all subdirectories. The result is sorted so
// that offset/limit pagination is stable across runs. A missing root is an
// error wrapping fs.ErrNotExist; unreadable subdirectories are skipped.
func EnumeratePaths(root, extension string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("reading corpus root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus root %s is not a directory", root)
	}

	suffix := "." + normalizeExtension(extension)

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), suffix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking corpus root %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

func normalizeExtension(ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return defaultExtension
	}
	return ext
}
