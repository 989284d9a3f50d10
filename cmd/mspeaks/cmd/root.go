// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ChrisMcGann/MSPeaks/pkg/report"
	"github.com/spf13/cobra"
)

var (
	// Flags shared by the grouping commands
	adductsCSV string
	polarity   string
	reportKind string
	verbose    bool
	cladeIDs   string
	minMembers int
	sqlitePath string
	threads    int
	logLevel   string

	// Flags for cluster command
	ppm float64
)

var rootCmd = &cobra.Command{
	Use:   "mspeaks",
	Short: "MSPeaks - Cross-sample mass feature grouping tool",
	Long: `MSPeaks reads per-sample peak tables, converts every adduct interpretation
of each peak into a neutral mass, and groups those masses across samples
into shared mass features.

Features are formed either around adaptive centers within a ppm tolerance
(cluster) or in fixed-width mass bins (bin). Reports include:
- Presence/count matrix of features by sample
- Feature membership lists
- Clade extraction for an exact set of samples
- Sample-set tallies`,
	Version:       "1.0.0",
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(clusterCmd)
	rootCmd.AddCommand(binCmd)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&adductsCSV, "adducts", "", "Path to adduct CSV extending the built-in table (adduct,mass,charge[,multiplicity])")
	flags.StringVar(&polarity, "polarity", "both", "Polarities to group: pos, neg, or both")
	flags.StringVar(&reportKind, "report", reportMatrix, "Report: matrix, members, clade, detailed, or sets")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Append one PEAK line per record to the matrix")
	flags.StringVar(&cladeIDs, "clade", "", "Comma-separated sample IDs for the clade report")
	flags.IntVar(&minMembers, "min-members", report.DefaultMinMembers, "Features need more records than this for members and sets reports")
	flags.StringVar(&sqlitePath, "sqlite", "", "Also export features and peaks to this SQLite database")
	flags.IntVar(&threads, "threads", 0, "Number of peak tables parsed concurrently (0 = one per file)")
	flags.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, or error")

	clusterCmd.Flags().Float64Var(&ppm, "ppm", 5, "Mass tolerance in parts per million")
}

// setupLogging installs a text logger on stderr so stdout carries only tables
func setupLogging(cmd *cobra.Command) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid log level '%s', must be debug, info, warn, or error", logLevel)
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// splitList splits a comma-separated flag value, dropping empty items
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
