package cmd

import (
	"github.com/ChrisMcGann/MSPeaks/pkg/grouping"
	"github.com/spf13/cobra"
)

var clusterCmd = &cobra.Command{
	Use:   "cluster <min_mass> <max_mass> <sample_order_file> <peak_table_directory>",
	Short: "Group neutral masses around centers within a ppm tolerance",
	Long: `Group neutral masses from all samples around adaptive centers. Masses are
sorted and a new center starts whenever a mass lies at or beyond the latest
center plus its ppm tolerance. Each record then joins the center whose window
[center-tol, center+tol) holds it.

Use '-' as the sample order file to order columns by sample ID.

Examples:
  # Group 100-2000 Da at the default 5 ppm
  mspeaks cluster 100 2000 samples.txt tables/

  # Tighter tolerance, positive mode only, with per-record lines
  mspeaks cluster 100 2000 - tables/ --ppm 3 --polarity pos --verbose`,
	Args: cobra.ExactArgs(4),
	RunE: runCluster,
}

func runCluster(cmd *cobra.Command, args []string) error {
	minMass, err := parseFloatArg("min_mass", args[0])
	if err != nil {
		return err
	}
	maxMass, err := parseFloatArg("max_mass", args[1])
	if err != nil {
		return err
	}
	if err := checkMassRange(minMass, maxMass); err != nil {
		return err
	}
	if err := checkPositive("ppm", ppm); err != nil {
		return err
	}

	return run(cmd, runConfig{
		grouping: grouping.Options{
			Mode:    grouping.ModeTolerance,
			PPM:     ppm,
			MinMass: minMass,
			MaxMass: maxMass,
		},
		orderFile: args[2],
		tableDir:  args[3],
	})
}
