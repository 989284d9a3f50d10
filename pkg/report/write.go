package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/MSPeaks/pkg/core"
	"github.com/ChrisMcGann/MSPeaks/pkg/grouping"
)

// Options controls matrix output
type Options struct {
	Verbose bool // append one PEAK line per member record
}

// keyColumn names the group key column for a mode
func keyColumn(mode grouping.Mode) string {
	if mode == grouping.ModeBins {
		return "bin"
	}
	return "mass"
}

func writeHeader(w *bufio.Writer, mode grouping.Mode, order []string) {
	fmt.Fprintf(w, "polarity\t%s", keyColumn(mode))
	for _, id := range order {
		fmt.Fprintf(w, "\t%s", id)
	}
	w.WriteString("\n")
}

func writeRow(w *bufio.Writer, row Row) {
	fmt.Fprintf(w, "%s\t%s", row.Group.Polarity, row.Group.Label())
	for _, c := range row.Counts {
		fmt.Fprintf(w, "\t%d", c)
	}
	w.WriteString("\n")
}

func writePeak(w *bufio.Writer, rec *core.PeakRecord) {
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%.6f\t%s\t%s\n",
		PeakTag,
		rec.SampleID,
		rec.Polarity,
		formatFloat(rec.MeasuredMZ),
		formatFloat(rec.RetentionTime),
		rec.Adduct,
		rec.Mass(),
		rec.FeatureID,
		rec.Annotation,
	)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteMatrix prints the presence/count matrix of the given tables: a header
// of sample IDs, then one row per non-empty group. With no groups only the
// header is written.
func WriteMatrix(out io.Writer, tables []*grouping.Table, order []string, opts Options) error {
	w := bufio.NewWriter(out)
	writeHeader(w, modeOf(tables), order)
	for _, t := range tables {
		for _, row := range CountMatrix(t, order) {
			writeRow(w, row)
			if opts.Verbose {
				for _, rec := range row.Group.Records {
					writePeak(w, rec)
				}
			}
		}
	}
	return w.Flush()
}

// WriteDetailed prints each group's summary line followed by one PEAK line
// per member record.
func WriteDetailed(out io.Writer, tables []*grouping.Table, order []string) error {
	return WriteMatrix(out, tables, order, Options{Verbose: true})
}

// WriteGroups prints a count matrix restricted to the given groups, such as
// the result of Clade.
func WriteGroups(out io.Writer, mode grouping.Mode, groups []*grouping.Group, order []string, opts Options) error {
	w := bufio.NewWriter(out)
	writeHeader(w, mode, order)
	for _, g := range groups {
		writeRow(w, Row{Group: g, Counts: g.Counts(order)})
		if opts.Verbose {
			for _, rec := range g.Records {
				writePeak(w, rec)
			}
		}
	}
	return w.Flush()
}

// WriteMembership prints, for every group above the threshold, its key and
// the sorted contributing sample IDs.
func WriteMembership(out io.Writer, tables []*grouping.Table, minMembers int) error {
	w := bufio.NewWriter(out)
	for _, t := range tables {
		for _, g := range t.Groups {
			if g.Len() <= minMembers {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", g.Polarity, g.Label(), strings.Join(g.SampleIDs(), "\t"))
		}
	}
	return w.Flush()
}

// WriteSampleSets prints the sample-set table: a "num" column with the group
// count, then one column per sample holding the ID when the sample belongs to
// the set. Columns follow order; samples missing from order come last, sorted.
func WriteSampleSets(out io.Writer, sets []SampleSet, order []string) error {
	columns := setColumns(sets, order)

	w := bufio.NewWriter(out)
	w.WriteString("num")
	for _, id := range columns {
		fmt.Fprintf(w, "\t%s", id)
	}
	w.WriteString("\n")

	for _, set := range sets {
		members := make(map[string]bool, len(set.SampleIDs))
		for _, id := range set.SampleIDs {
			members[id] = true
		}
		fmt.Fprintf(w, "%d", set.Groups)
		for _, id := range columns {
			if members[id] {
				fmt.Fprintf(w, "\t%s", id)
			} else {
				w.WriteString("\t")
			}
		}
		w.WriteString("\n")
	}
	return w.Flush()
}

func setColumns(sets []SampleSet, order []string) []string {
	present := make(map[string]bool)
	for _, set := range sets {
		for _, id := range set.SampleIDs {
			present[id] = true
		}
	}

	var columns []string
	for _, id := range order {
		if present[id] {
			columns = append(columns, id)
			delete(present, id)
		}
	}
	rest := make([]string, 0, len(present))
	for id := range present {
		rest = append(rest, id)
	}
	return append(columns, dedupeSorted(rest)...)
}

// WriteSummary prints loaded, assigned and dropped record counts per
// polarity so that coverage loss is visible.
func WriteSummary(out io.Writer, tables []*grouping.Table) error {
	w := bufio.NewWriter(out)
	w.WriteString("polarity\tgroups\tloaded\tassigned\tdropped\n")
	for _, t := range tables {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", t.Polarity, len(t.Groups), t.Stats.Loaded, t.Stats.Assigned, t.Stats.Dropped)
	}
	return w.Flush()
}

func modeOf(tables []*grouping.Table) grouping.Mode {
	if len(tables) > 0 {
		return tables[0].Mode
	}
	return grouping.ModeTolerance
}
