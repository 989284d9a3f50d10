package peaktable

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// TableSuffix is the file name suffix of peak tables; the part before it is
// the sample ID.
const TableSuffix = ".peak.table"

// SampleIDFromName returns the sample ID encoded in a peak table file name
// and whether the name follows the convention.
func SampleIDFromName(name string) (string, bool) {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || !strings.HasSuffix(base, TableSuffix) {
		return "", false
	}
	id := strings.TrimSuffix(base, TableSuffix)
	if id == "" || strings.ContainsAny(id, " \t") {
		return "", false
	}
	return id, true
}

// FindTables lists the peak tables in dir, sorted by name. When ids is
// non-empty only tables whose sample ID is listed are returned.
func FindTables(dir string, ids []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read peak table directory: %w", err)
	}

	allowed := make(map[string]bool, len(ids))
	for _, id := range ids {
		allowed[id] = true
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ok := SampleIDFromName(entry.Name())
		if !ok {
			continue
		}
		if len(allowed) > 0 && !allowed[id] {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)

	return files, nil
}
