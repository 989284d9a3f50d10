// Package filter provides record selection applied while peak tables are loaded
package filter

import (
	"fmt"
	"math"

	"github.com/ChrisMcGann/MSPeaks/pkg/core"
)

// Default neutral-mass search range
const (
	DefaultMinMass = 100.0
	DefaultMaxMass = 2000.0
)

// Config holds filtering configuration
type Config struct {
	MinMass    float64         // Lowest neutral mass kept (inclusive)
	MaxMass    float64         // Highest neutral mass kept (inclusive, 0 = no limit)
	Polarities []core.Polarity // Keep only these ion modes (nil = all)
}

// DefaultConfig returns the standard 100-2000 Da search range for both polarities.
func DefaultConfig() Config {
	return Config{
		MinMass: DefaultMinMass,
		MaxMass: DefaultMaxMass,
	}
}

// Validate checks that the configured range is usable
func (c *Config) Validate() error {
	if math.IsNaN(c.MinMass) || math.IsNaN(c.MaxMass) {
		return fmt.Errorf("mass range must be numeric")
	}
	if c.MinMass < 0 {
		return fmt.Errorf("minimum mass must be non-negative, got %g", c.MinMass)
	}
	if c.MaxMass > 0 && c.MaxMass < c.MinMass {
		return fmt.Errorf("maximum mass %g is below minimum mass %g", c.MaxMass, c.MinMass)
	}
	return nil
}

// Keep reports whether a record passes all configured filters. The range is
// checked against the deionized mass, not the measured m/z.
func (c *Config) Keep(rec *core.PeakRecord) bool {
	if !c.keepPolarity(rec.Polarity) {
		return false
	}

	mass := rec.Mass()
	if mass < c.MinMass {
		return false
	}
	if c.MaxMass > 0 && mass > c.MaxMass {
		return false
	}
	return true
}

// Apply returns the records that pass the filters, preserving order
func (c *Config) Apply(recs []*core.PeakRecord) []*core.PeakRecord {
	var filtered []*core.PeakRecord
	for _, rec := range recs {
		if c.Keep(rec) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// keepPolarity checks the record's ion mode against the allowed list
func (c *Config) keepPolarity(p core.Polarity) bool {
	if len(c.Polarities) == 0 {
		return true
	}
	for _, allowed := range c.Polarities {
		if allowed == p {
			return true
		}
	}
	return false
}

// SplitByPolarity partitions records by ion mode, preserving order within each mode
func SplitByPolarity(recs []*core.PeakRecord) map[core.Polarity][]*core.PeakRecord {
	out := make(map[core.Polarity][]*core.PeakRecord, len(core.Polarities))
	for _, p := range core.Polarities {
		out[p] = nil
	}
	for _, rec := range recs {
		out[rec.Polarity] = append(out[rec.Polarity], rec)
	}
	return out
}
