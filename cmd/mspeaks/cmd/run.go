package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/MSPeaks/pkg/core"
	"github.com/ChrisMcGann/MSPeaks/pkg/filter"
	"github.com/ChrisMcGann/MSPeaks/pkg/grouping"
	"github.com/ChrisMcGann/MSPeaks/pkg/reader/peaktable"
	"github.com/ChrisMcGann/MSPeaks/pkg/reader/sampleorder"
	"github.com/ChrisMcGann/MSPeaks/pkg/report"
	"github.com/ChrisMcGann/MSPeaks/pkg/writer/sqlite"
	"github.com/spf13/cobra"
)

// Report kinds accepted by --report
const (
	reportMatrix   = "matrix"
	reportMembers  = "members"
	reportClade    = "clade"
	reportDetailed = "detailed"
	reportSets     = "sets"
)

// defaultOrder selects sorted sample IDs instead of an order file
const defaultOrder = "-"

// runConfig gathers the positional arguments of a grouping command
type runConfig struct {
	grouping  grouping.Options
	orderFile string
	tableDir  string
}

func parseFloatArg(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s '%s', must be a number", name, s)
	}
	return v, nil
}

func checkPositive(name string, v float64) error {
	if v <= 0 {
		return fmt.Errorf("invalid %s %g, must be positive", name, v)
	}
	return nil
}

// checkMassRange validates the positional search range. A zero maximum would
// mean "no limit" to the filter while the bin grid ends at zero, so it is
// rejected here.
func checkMassRange(minMass, maxMass float64) error {
	if minMass < 0 {
		return fmt.Errorf("invalid min_mass %g, must be non-negative", minMass)
	}
	if err := checkPositive("max_mass", maxMass); err != nil {
		return err
	}
	if maxMass < minMass {
		return fmt.Errorf("invalid mass range: max_mass %g is below min_mass %g", maxMass, minMass)
	}
	return nil
}

// parsePolarities maps the --polarity flag to the polarities to group
func parsePolarities(s string) ([]core.Polarity, error) {
	if strings.EqualFold(strings.TrimSpace(s), "both") {
		return core.Polarities, nil
	}
	pol, err := core.ParsePolarity(s)
	if err != nil {
		return nil, fmt.Errorf("invalid polarity '%s', must be pos, neg, or both", s)
	}
	return []core.Polarity{pol}, nil
}

// validateReport checks report flags before any input is read
func validateReport() error {
	switch reportKind {
	case reportMatrix, reportMembers, reportDetailed, reportSets:
	case reportClade:
		if len(splitList(cladeIDs)) == 0 {
			return fmt.Errorf("--report clade requires --clade with at least one sample ID")
		}
	default:
		return fmt.Errorf("invalid report '%s', must be matrix, members, clade, detailed, or sets", reportKind)
	}
	if minMembers < 0 {
		return fmt.Errorf("invalid --min-members %d, must be non-negative", minMembers)
	}
	return nil
}

func loadAdducts() (*core.AdductTable, error) {
	table := core.DefaultAdductTable()
	if adductsCSV == "" {
		return table, nil
	}

	f, err := os.Open(adductsCSV)
	if err != nil {
		return nil, fmt.Errorf("failed to open adduct file: %w", err)
	}
	defer f.Close()

	before := table.Len()
	if err := table.LoadFromCSV(f); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", adductsCSV, err)
	}
	slog.Info("loaded adducts", "file", adductsCSV, "known", table.Len(), "added", table.Len()-before)
	return table, nil
}

// run executes the shared pipeline: read the sample order, load the peak
// tables, group per polarity and print the selected report.
func run(cmd *cobra.Command, cfg runConfig) error {
	pols, err := parsePolarities(polarity)
	if err != nil {
		return err
	}
	if err := validateReport(); err != nil {
		return err
	}
	filterConfig := filter.Config{
		MinMass:    cfg.grouping.MinMass,
		MaxMass:    cfg.grouping.MaxMass,
		Polarities: pols,
	}
	if err := filterConfig.Validate(); err != nil {
		return err
	}

	// Arguments are valid from here on; later failures are not usage errors
	cmd.SilenceUsage = true
	ctx := cmd.Context()

	var order []string
	if cfg.orderFile != defaultOrder {
		order, err = sampleorder.ReadFile(cfg.orderFile)
		if err != nil {
			return err
		}
		slog.Debug("read sample order", "file", cfg.orderFile, "samples", len(order))
	}

	files, err := peaktable.FindTables(cfg.tableDir, order)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files found in %s", peaktable.TableSuffix, cfg.tableDir)
	}

	adducts, err := loadAdducts()
	if err != nil {
		return err
	}

	loaded, err := peaktable.Load(ctx, files, peaktable.Options{
		Filter:   filterConfig,
		Resolver: adducts,
		Workers:  threads,
	})
	if err != nil {
		return err
	}
	logWarnings(loaded.Warnings)
	slog.Info("loaded peak tables",
		"files", loaded.Stats.Files,
		"rows", loaded.Stats.Rows,
		"records", len(loaded.Records),
		"filtered", loaded.Stats.Filtered,
		"malformed", loaded.Stats.Malformed,
		"rejected", loaded.Stats.Rejected,
	)

	result, err := grouping.GroupAll(ctx, loaded.Records, cfg.grouping)
	if err != nil {
		return err
	}
	tables := result.Tables(pols...)
	columns := sampleorder.Resolve(order, loaded.SampleIDs)

	// Export first so that a failing export leaves stdout empty
	if sqlitePath != "" {
		if err := exportSQLite(sqlitePath, tables, columns); err != nil {
			return err
		}
	}

	if err := writeReport(cmd.OutOrStdout(), cfg.grouping.Mode, tables, columns); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	totals := result.Stats()
	if totals.Dropped > 0 {
		slog.Warn("records outside every group", "dropped", totals.Dropped)
	}
	return report.WriteSummary(cmd.ErrOrStderr(), tables)
}

// logWarnings reports recoverable row problems with their location
func logWarnings(warnings []error) {
	for _, w := range warnings {
		var malformed *peaktable.MalformedRowError
		var rejected *peaktable.RecordError
		switch {
		case errors.As(w, &malformed):
			slog.Warn("skipped malformed row", "file", malformed.File, "line", malformed.Line, "error", malformed.Reason)
		case errors.As(w, &rejected):
			slog.Warn("skipped adduct", "file", rejected.File, "line", rejected.Line, "adduct", rejected.Adduct, "error", rejected.Err)
		default:
			slog.Warn("skipped row", "error", w)
		}
	}
}

func writeReport(out io.Writer, mode grouping.Mode, tables []*grouping.Table, order []string) error {
	switch reportKind {
	case reportMembers:
		return report.WriteMembership(out, tables, minMembers)
	case reportClade:
		target := splitList(cladeIDs)
		var groups []*grouping.Group
		for _, t := range tables {
			groups = append(groups, report.Clade(t, target)...)
		}
		slog.Info("clade extracted", "samples", len(target), "features", len(groups))
		return report.WriteGroups(out, mode, groups, order, report.Options{Verbose: verbose})
	case reportDetailed:
		return report.WriteDetailed(out, tables, order)
	case reportSets:
		return report.WriteSampleSets(out, report.SampleSets(tables, minMembers), order)
	default:
		return report.WriteMatrix(out, tables, order, report.Options{Verbose: verbose})
	}
}

func exportSQLite(path string, tables []*grouping.Table, order []string) error {
	writer, err := sqlite.NewWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create output database: %w", err)
	}
	defer writer.Close()

	if err := writer.WriteSamples(order); err != nil {
		return err
	}
	for _, t := range tables {
		if err := writer.WriteTable(t); err != nil {
			return err
		}
	}
	if err := writer.Finalize(); err != nil {
		return fmt.Errorf("failed to finalize database: %w", err)
	}
	slog.Info("exported features", "file", path)
	return nil
}
