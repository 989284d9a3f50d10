// Package sampleorder reads the sample-order file that fixes the column order
// of every printed table.
package sampleorder

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ChrisMcGann/MSPeaks/pkg/reader/peaktable"
)

// Read parses a sample-order list. The first whitespace-separated token of
// each line is the sample ID; a trailing peak table suffix is stripped.
// Blank lines, comments and repeated IDs are skipped.
func Read(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)

	var ids []string
	seen := make(map[string]bool)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		id := strings.Fields(line)[0]
		id = strings.TrimSuffix(id, peaktable.TableSuffix)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading sample order: %w", err)
	}

	return ids, nil
}

// ReadFile opens and parses a sample-order file
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sample order file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Resolve picks the column order: the explicit order when given, otherwise
// the sorted IDs seen while loading.
func Resolve(explicit, seen []string) []string {
	if len(explicit) > 0 {
		return explicit
	}
	return seen
}
