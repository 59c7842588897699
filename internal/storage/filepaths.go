package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// FilePathChoices lists the regular files directly inside root, as full
// paths, sorted. These are the values accepted by a sample record's
// file_path field. Subdirectories are not descended into.
func FilePathChoices(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading file path root: %w", err)
	}

	var choices []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		choices = append(choices, filepath.Join(root, e.Name()))
	}
	sort.Strings(choices)
	return choices, nil
}
