package grouping

import (
	"context"
	"fmt"

	"github.com/ChrisMcGann/MSPeaks/pkg/core"
	"github.com/ChrisMcGann/MSPeaks/pkg/filter"
	"golang.org/x/sync/errgroup"
)

// Options configures GroupAll
type Options struct {
	Mode     Mode
	PPM      float64 // tolerance mode
	BinWidth float64 // bin mode
	MinMass  float64 // bin mode grid start
	MaxMass  float64 // bin mode grid end
}

// Result maps each polarity to its independent group table
type Result map[core.Polarity]*Table

// Stats sums the per-polarity counters
func (r Result) Stats() Stats {
	var total Stats
	for _, t := range r {
		total.Loaded += t.Stats.Loaded
		total.Assigned += t.Stats.Assigned
		total.Dropped += t.Stats.Dropped
	}
	return total
}

// GroupAll splits records by polarity and groups each polarity on its own.
// Both polarities share one bin grid in bin mode. Each polarity is assigned
// sequentially; the two run concurrently.
func GroupAll(ctx context.Context, recs []*core.PeakRecord, opts Options) (Result, error) {
	var bins []Bin
	switch opts.Mode {
	case ModeTolerance:
		if opts.PPM <= 0 {
			return nil, fmt.Errorf("%w: ppm must be positive, got %g", ErrInvalidTolerance, opts.PPM)
		}
	case ModeBins:
		var err error
		bins, err = CreateBins(opts.MinMass, opts.MaxMass, opts.BinWidth)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown grouping mode %v", opts.Mode)
	}

	parts := filter.SplitByPolarity(recs)
	tables := make([]*Table, len(core.Polarities))

	g, ctx := errgroup.WithContext(ctx)
	for i, pol := range core.Polarities {
		i, pol := i, pol
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if opts.Mode == ModeBins {
				tables[i] = BinRecords(parts[pol], pol, bins)
				return nil
			}
			t, err := Cluster(parts[pol], pol, opts.PPM)
			if err != nil {
				return fmt.Errorf("%s: %w", pol, err)
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(Result, len(tables))
	for i, pol := range core.Polarities {
		result[pol] = tables[i]
	}
	return result, nil
}

// Tables returns the tables of the given polarities in that order, skipping
// polarities without a table.
func (r Result) Tables(pols ...core.Polarity) []*Table {
	if len(pols) == 0 {
		pols = core.Polarities
	}
	var out []*Table
	for _, pol := range pols {
		if t, ok := r[pol]; ok && t != nil {
			out = append(out, t)
		}
	}
	return out
}
