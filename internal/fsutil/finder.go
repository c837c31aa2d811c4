// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// FindFilesByExtension recursively searches the given root path for all files ending
// with any of the specified extensions, ignoring case. rootPath may also name a single
// file, which is returned when it matches. The result is sorted.
func FindFilesByExtension(rootPath string, extensions ...string) ([]string, error) {
	if len(extensions) == 0 || slices.Contains(extensions, "") {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := strings.ToLower(d.Name())
		for _, ext := range extensions {
			if strings.HasSuffix(name, strings.ToLower(ext)) {
				files = append(files, path)
				break
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	slices.Sort(files)
	return files, nil
}
