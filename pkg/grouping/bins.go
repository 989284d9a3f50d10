package grouping

import (
	"fmt"
	"math"
	"sort"

	"github.com/ChrisMcGann/MSPeaks/pkg/core"
)

// Bin is a half-open interval [Low, High) of neutral mass
type Bin struct {
	Low  float64
	High float64
}

// Contains reports whether mass falls inside the bin
func (b Bin) Contains(mass float64) bool {
	return b.Low <= mass && mass < b.High
}

// MaxBins caps the grid CreateBins will build. 100-2000 Da at 0.0005 Da
// stays under it.
const MaxBins = 5_000_000

// CreateBins partitions the mass axis from minMass upward into bins of width
// until the lower edge passes maxMass. Edges are rounded so that drift does not
// accumulate over many bins. The last bin may extend past maxMass.
func CreateBins(minMass, maxMass, width float64) ([]Bin, error) {
	if math.IsNaN(minMass) || math.IsNaN(maxMass) || math.IsNaN(width) ||
		math.IsInf(minMass, 0) || math.IsInf(maxMass, 0) || math.IsInf(width, 0) {
		return nil, fmt.Errorf("%w: bounds and width must be finite numbers", ErrInvalidBinning)
	}
	if width < math.Pow(10, -binPrecision) {
		return nil, fmt.Errorf("%w: bin width %g is below %d-decimal precision", ErrInvalidBinning, width, binPrecision)
	}
	if minMass > maxMass {
		return nil, fmt.Errorf("%w: minimum mass %g exceeds maximum mass %g", ErrInvalidBinning, minMass, maxMass)
	}

	n := math.Floor((maxMass-core.RoundFloat(minMass, binPrecision))/width) + 1
	if n > MaxBins {
		return nil, fmt.Errorf("%w: %.0f bins of width %g exceed the limit of %d", ErrInvalidBinning, n, width, MaxBins)
	}

	bins := make([]Bin, 0, int(n)+1)
	for cur := core.RoundFloat(minMass, binPrecision); cur <= maxMass; {
		high := core.RoundFloat(cur+width, binPrecision)
		bins = append(bins, Bin{Low: cur, High: high})
		cur = high
	}
	return bins, nil
}

// BinRecords assigns records of one polarity to the bin holding their
// rounded mass. Only non-empty bins become groups.
func BinRecords(recs []*core.PeakRecord, pol core.Polarity, bins []Bin) *Table {
	sorted := sortedByMass(recs)

	table := &Table{Mode: ModeBins, Polarity: pol}
	table.Stats.Loaded = len(sorted)

	byBin := make(map[int]*Group)
	for _, rec := range sorted {
		mass := core.RoundFloat(rec.Mass(), binPrecision)
		i := sort.Search(len(bins), func(i int) bool {
			return bins[i].High > mass
		})
		if i == len(bins) || !bins[i].Contains(mass) {
			table.Stats.Dropped++
			continue
		}

		g, ok := byBin[i]
		if !ok {
			g = &Group{
				Mode:     ModeBins,
				Polarity: pol,
				Center:   (bins[i].Low + bins[i].High) / 2,
				Low:      bins[i].Low,
				High:     bins[i].High,
			}
			byBin[i] = g
			table.Groups = append(table.Groups, g)
		}
		g.Records = append(g.Records, rec)
		table.Stats.Assigned++
	}

	return table
}
