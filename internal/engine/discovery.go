package engine

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Ext is the extension of XMIR files picked up from directories.
const Ext = ".xmir"

// Discover expands roots into XMIR files. Files are taken as given;
// directories are walked for *.xmir files in lexical order. Duplicates are
// dropped and the order of roots is kept.
func Discover(roots []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to discover %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == Ext {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to discover %s: %w", root, err)
		}
	}
	return files, nil
}
