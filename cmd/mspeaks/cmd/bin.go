package cmd

import (
	"github.com/ChrisMcGann/MSPeaks/pkg/grouping"
	"github.com/spf13/cobra"
)

var binCmd = &cobra.Command{
	Use:   "bin <bin_width> <min_mass> <max_mass> <sample_order_file> <peak_table_directory>",
	Short: "Group neutral masses into fixed-width bins",
	Long: `Group neutral masses from all samples into contiguous half-open bins
[low, low+width) covering min_mass to max_mass. Bin edges are rounded to six
decimals. Only bins that receive at least one record are reported.

Use '-' as the sample order file to order columns by sample ID.

Examples:
  # 0.01 Da bins over 100-2000 Da
  mspeaks bin 0.01 100 2000 samples.txt tables/

  # Sample-set tally for negative mode
  mspeaks bin 0.005 100 1000 - tables/ --polarity neg --report sets`,
	Args: cobra.ExactArgs(5),
	RunE: runBin,
}

func runBin(cmd *cobra.Command, args []string) error {
	width, err := parseFloatArg("bin_width", args[0])
	if err != nil {
		return err
	}
	if err := checkPositive("bin_width", width); err != nil {
		return err
	}
	minMass, err := parseFloatArg("min_mass", args[1])
	if err != nil {
		return err
	}
	maxMass, err := parseFloatArg("max_mass", args[2])
	if err != nil {
		return err
	}
	if err := checkMassRange(minMass, maxMass); err != nil {
		return err
	}

	return run(cmd, runConfig{
		grouping: grouping.Options{
			Mode:     grouping.ModeBins,
			BinWidth: width,
			MinMass:  minMass,
			MaxMass:  maxMass,
		},
		orderFile: args[3],
		tableDir:  args[4],
	})
}
