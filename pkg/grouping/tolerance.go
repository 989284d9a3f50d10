package grouping

import (
	"fmt"
	"math"
	"sort"

	"github.com/ChrisMcGann/MSPeaks/pkg/core"
)

// CreateCenterPeaks walks the masses in ascending order and appends a new
// center whenever a mass lies at or beyond the latest center plus its ppm
// tolerance. Absorbed masses do not move the center. Existing centers are
// kept and the result is sorted ascending. masses is not modified.
func CreateCenterPeaks(masses []float64, centers []float64, ppm float64) []float64 {
	sorted := make([]float64, len(masses))
	copy(sorted, masses)
	sort.Float64s(sorted)

	for _, mass := range sorted {
		if len(centers) == 0 {
			centers = append(centers, mass)
			continue
		}
		last := centers[len(centers)-1]
		if last+core.CalcPPM(last, ppm) <= mass {
			centers = append(centers, mass)
		}
	}

	sort.Float64s(centers)
	return centers
}

// Cluster builds tolerance-based groups for records of one polarity. Each
// record joins the first center c with c-tol <= mass < c+tol; records
// matching none are counted as dropped.
func Cluster(recs []*core.PeakRecord, pol core.Polarity, ppm float64) (*Table, error) {
	if math.IsNaN(ppm) || ppm <= 0 {
		return nil, fmt.Errorf("%w: ppm must be positive, got %g", ErrInvalidTolerance, ppm)
	}

	sorted := sortedByMass(recs)
	masses := make([]float64, len(sorted))
	for i, rec := range sorted {
		masses[i] = rec.Mass()
	}
	centers := CreateCenterPeaks(masses, nil, ppm)

	groups := make([]*Group, len(centers))
	for i, c := range centers {
		tol := core.CalcPPM(c, ppm)
		groups[i] = &Group{
			Mode:     ModeTolerance,
			Polarity: pol,
			Center:   c,
			Low:      c - tol,
			High:     c + tol,
		}
	}

	table := &Table{Mode: ModeTolerance, Polarity: pol}
	table.Stats.Loaded = len(sorted)
	for _, rec := range sorted {
		g := matchCenter(groups, rec.Mass())
		if g == nil {
			table.Stats.Dropped++
			continue
		}
		g.Records = append(g.Records, rec)
		table.Stats.Assigned++
	}

	for _, g := range groups {
		if g.Len() > 0 {
			table.Groups = append(table.Groups, g)
		}
	}
	return table, nil
}

// matchCenter finds the first group whose window [Low, High) holds mass.
// High grows with the center, so the only candidate is the first group whose
// High exceeds mass.
func matchCenter(groups []*Group, mass float64) *Group {
	i := sort.Search(len(groups), func(i int) bool {
		return groups[i].High > mass
	})
	if i < len(groups) && groups[i].Low <= mass {
		return groups[i]
	}
	return nil
}
