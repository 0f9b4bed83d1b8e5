package logbook

import (
	"path/filepath"
)

// DirScanner lists the record paths under a store root, relative to it.
// Injecting it keeps the store's discovery logic testable without a real
// directory tree.
type DirScanner interface {
	Scan(root string) ([]string, error)
}

// OSScanner walks the real filesystem for the three-level date partition.
type OSScanner struct{}

func (OSScanner) Scan(root string) ([]string, error) {
	pattern := filepath.Join(root,
		"[0-9][0-9][0-9][0-9]",
		"[0-9][0-9]",
		"[0-9][0-9]-*.txt",
	)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, match := range matches {
		rel, err := filepath.Rel(root, match)
		if err != nil {
			return nil, err
		}
		if _, _, err := splitRecordPath(rel); err != nil {
			continue
		}
		paths = append(paths, rel)
	}
	return paths, nil
}
