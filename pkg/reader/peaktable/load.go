package peaktable

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ChrisMcGann/MSPeaks/pkg/core"
	"github.com/ChrisMcGann/MSPeaks/pkg/filter"
	"golang.org/x/sync/errgroup"
)

// Options configures Load
type Options struct {
	Filter   filter.Config
	Resolver core.AdductResolver
	Workers  int // files parsed concurrently (<= 0 = one per file)
}

// Stats summarises a load across all files
type Stats struct {
	Files     int
	Rows      int
	Records   int // records expanded from rows, before the mass filter
	Filtered  int // records discarded by the mass filter
	Malformed int
	Rejected  int
}

// LoadResult holds everything read from a set of peak tables
type LoadResult struct {
	Records   []*core.PeakRecord
	SampleIDs []string // distinct sample IDs seen in any parsed row, sorted
	Warnings  []error
	Stats     Stats
}

type fileResult struct {
	records  []*core.PeakRecord
	samples  []string
	filtered int
	warnings []error
	stats    ReaderStats
}

// Load reads every file, applies the mass filter and returns the kept
// records in file order. Any file that cannot be opened or read aborts the
// whole load.
func Load(ctx context.Context, files []string, opts Options) (*LoadResult, error) {
	if err := opts.Filter.Validate(); err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	if opts.Resolver == nil {
		opts.Resolver = core.DefaultAdductTable()
	}

	results := make([]*fileResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := loadFile(path, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &LoadResult{}
	seen := make(map[string]bool)
	for _, res := range results {
		out.Stats.Files++
		out.Stats.Rows += res.stats.Rows
		out.Stats.Records += res.stats.Records
		out.Stats.Filtered += res.filtered
		out.Stats.Malformed += res.stats.Malformed
		out.Stats.Rejected += res.stats.Rejected
		out.Warnings = append(out.Warnings, res.warnings...)

		for _, id := range res.samples {
			if !seen[id] {
				seen[id] = true
				out.SampleIDs = append(out.SampleIDs, id)
			}
		}
		out.Records = append(out.Records, res.records...)
	}
	sort.Strings(out.SampleIDs)

	return out, nil
}

// loadFile parses one peak table and keeps the records passing the filter
func loadFile(path string, opts Options) (*fileResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open peak table: %w", err)
	}
	defer f.Close()

	reader := NewReader(f, filepath.Base(path), opts.Resolver)
	res := &fileResult{}
	seen := make(map[string]bool)
	for reader.Next() {
		for _, rec := range reader.Records() {
			if !seen[rec.SampleID] {
				seen[rec.SampleID] = true
				res.samples = append(res.samples, rec.SampleID)
			}
			if !opts.Filter.Keep(rec) {
				res.filtered++
				continue
			}
			res.records = append(res.records, rec)
		}
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("error reading peak table: %w", err)
	}

	res.warnings = reader.Warnings()
	res.stats = reader.Stats()
	return res, nil
}
