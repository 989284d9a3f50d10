// Package grouping collects neutral masses from many samples into shared
// mass features, either around tolerance-based centers or in fixed-width bins.
package grouping

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ChrisMcGann/MSPeaks/pkg/core"
)

// Decimal precision bin edges and masses are rounded to before comparison
const binPrecision = 6

var (
	ErrInvalidTolerance = errors.New("invalid tolerance")
	ErrInvalidBinning   = errors.New("invalid binning")
)

// Mode selects how features are formed
type Mode int

const (
	ModeTolerance Mode = iota // adaptive centers within a ppm tolerance
	ModeBins                  // fixed-width intervals of neutral mass
)

func (m Mode) String() string {
	switch m {
	case ModeTolerance:
		return "tolerance"
	case ModeBins:
		return "bins"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Group is one mass feature and the records assigned to it. In tolerance
// mode Center is the representative mass and [Low, High) its tolerance
// window; in bin mode [Low, High) is the bin and Center its midpoint.
type Group struct {
	Mode     Mode
	Polarity core.Polarity
	Center   float64
	Low      float64
	High     float64
	Records  []*core.PeakRecord
}

// Label returns the group key as printed in reports
func (g *Group) Label() string {
	if g.Mode == ModeBins {
		return fmt.Sprintf("%.6f-%.6f", g.Low, g.High)
	}
	return fmt.Sprintf("%.6f", g.Center)
}

// Len returns the number of records in the group
func (g *Group) Len() int {
	return len(g.Records)
}

// SampleIDs returns the sorted, de-duplicated IDs of contributing samples
func (g *Group) SampleIDs() []string {
	seen := make(map[string]bool, len(g.Records))
	var ids []string
	for _, rec := range g.Records {
		if !seen[rec.SampleID] {
			seen[rec.SampleID] = true
			ids = append(ids, rec.SampleID)
		}
	}
	sort.Strings(ids)
	return ids
}

// Counts returns the number of records per sample, in the given order
func (g *Group) Counts(order []string) []int {
	bySample := make(map[string]int, len(order))
	for _, rec := range g.Records {
		bySample[rec.SampleID]++
	}
	counts := make([]int, len(order))
	for i, id := range order {
		counts[i] = bySample[id]
	}
	return counts
}

// Stats tracks how many records of one polarity reached a group
type Stats struct {
	Loaded   int
	Assigned int
	Dropped  int // records that matched no group
}

// Table holds the non-empty groups of one polarity in ascending mass order
type Table struct {
	Mode     Mode
	Polarity core.Polarity
	Groups   []*Group
	Stats    Stats
}

// sortedByMass returns a copy of recs in ascending mass order, keeping the
// input order for equal masses
func sortedByMass(recs []*core.PeakRecord) []*core.PeakRecord {
	out := make([]*core.PeakRecord, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Mass() < out[j].Mass()
	})
	return out
}
