// MSPeaks - Cross-sample mass feature grouping tool
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/MSPeaks/cmd/mspeaks/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
