// Package report turns grouped peak records into tab-delimited tables. All
// builders are pure functions of the group tables and a sample order.
package report

import (
	"slices"
	"sort"
	"strings"

	"github.com/ChrisMcGann/MSPeaks/pkg/grouping"
)

// PeakTag prefixes per-record annotation lines
const PeakTag = "PEAK"

// DefaultMinMembers is the membership threshold: groups need more records than this
const DefaultMinMembers = 2

// Row is one line of the presence/count matrix
type Row struct {
	Group  *grouping.Group
	Counts []int // records per sample, in sample order
}

// CountMatrix returns one row per non-empty group with the number of records
// each sample contributed.
func CountMatrix(t *grouping.Table, order []string) []Row {
	var rows []Row
	for _, g := range t.Groups {
		if g.Len() == 0 {
			continue
		}
		rows = append(rows, Row{Group: g, Counts: g.Counts(order)})
	}
	return rows
}

// Membership returns the sorted contributing sample IDs of every group with
// more than minMembers records.
func Membership(t *grouping.Table, minMembers int) [][]string {
	var out [][]string
	for _, g := range t.Groups {
		if g.Len() > minMembers {
			out = append(out, g.SampleIDs())
		}
	}
	return out
}

// Clade returns the groups whose contributing samples are exactly the target
// set, with at least one record per target sample.
func Clade(t *grouping.Table, target []string) []*grouping.Group {
	want := dedupeSorted(target)
	if len(want) == 0 {
		return nil
	}

	var out []*grouping.Group
	for _, g := range t.Groups {
		if g.Len() < len(want) {
			continue
		}
		if slices.Equal(g.SampleIDs(), want) {
			out = append(out, g)
		}
	}
	return out
}

// SampleSet counts the groups shared by exactly one combination of samples
type SampleSet struct {
	SampleIDs []string
	Groups    int
}

// SampleSets tallies, over groups with more than minMembers records, how many
// groups each distinct set of contributing samples has. Sets are ordered by
// group count, largest first.
func SampleSets(tables []*grouping.Table, minMembers int) []SampleSet {
	index := make(map[string]int)
	var sets []SampleSet
	for _, t := range tables {
		for _, g := range t.Groups {
			if g.Len() <= minMembers {
				continue
			}
			ids := g.SampleIDs()
			key := strings.Join(ids, "\x00")
			i, ok := index[key]
			if !ok {
				i = len(sets)
				index[key] = i
				sets = append(sets, SampleSet{SampleIDs: ids})
			}
			sets[i].Groups++
		}
	}

	sort.SliceStable(sets, func(i, j int) bool {
		if sets[i].Groups != sets[j].Groups {
			return sets[i].Groups > sets[j].Groups
		}
		return strings.Join(sets[i].SampleIDs, "\t") < strings.Join(sets[j].SampleIDs, "\t")
	})
	return sets
}

func dedupeSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
