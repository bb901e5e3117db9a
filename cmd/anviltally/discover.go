package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// discoverRegionFiles expands paths (files or directories) into a sorted
// list of region file paths. A directory is walked recursively and only
// files named *.mca (any case) inside it are included. Paths named directly
// are included whatever their suffix, on the assumption the caller knows
// what they pointed at.
func discoverRegionFiles(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), ".mca") {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(out)
	return out, nil
}
