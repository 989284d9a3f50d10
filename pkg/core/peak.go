// Package core provides the peak record model and deionization logic.
package core

import (
	"fmt"
	"math"
	"strings"
)

// Polarity is the ion mode a peak was measured in.
type Polarity int

const (
	Positive Polarity = iota
	Negative
)

// Polarities lists both ion modes in reporting order.
var Polarities = []Polarity{Positive, Negative}

func (p Polarity) String() string {
	switch p {
	case Positive:
		return "pos"
	case Negative:
		return "neg"
	default:
		return fmt.Sprintf("Polarity(%d)", int(p))
	}
}

// ParsePolarity accepts pos/neg and the short and long forms used by older tables.
func ParsePolarity(s string) (Polarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pos", "p", "positive", "+":
		return Positive, nil
	case "neg", "n", "negative", "-":
		return Negative, nil
	default:
		return 0, fmt.Errorf("invalid polarity '%s', must be pos or neg", s)
	}
}

// PeakRecord is one observed peak under one adduct hypothesis.
type PeakRecord struct {
	// Required fields
	SampleID      string
	Polarity      Polarity
	MeasuredMZ    float64
	RetentionTime float64
	Adduct        string
	NeutralMass   float64 // set by NewPeakRecord, never modified

	// Optional metadata, carried through to reports
	AdductCount int
	DeionizedMZ float64
	FeatureID   string
	Annotation  string

	// Internal tracking
	SourceFile string
	Line       int
}

// ValidationError represents an error found during record validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Deionize converts an observed m/z into the neutral mass of the molecule
// under the given adduct. Anions yield a negative value; use the absolute
// value as the mass.
func Deionize(mz float64, a Adduct) (float64, error) {
	if a.Multiplicity <= 0 {
		return 0, &ValidationError{
			Field:   "Adduct",
			Message: fmt.Sprintf("%s has non-positive multiplicity %d", a.Name, a.Multiplicity),
		}
	}
	charge := float64(a.Charge)
	if a.Charge >= 0 {
		return (mz*charge - a.Mass) / float64(a.Multiplicity), nil
	}
	return (mz*charge + a.Mass) / float64(a.Multiplicity), nil
}

// NewPeakRecord builds a record for one adduct interpretation of a peak and
// computes its neutral mass with the resolver.
func NewPeakRecord(sampleID string, pol Polarity, mz, rt float64, adduct string, resolver AdductResolver) (*PeakRecord, error) {
	a, err := resolver.Resolve(adduct)
	if err != nil {
		return nil, err
	}
	neutral, err := Deionize(mz, a)
	if err != nil {
		return nil, err
	}
	return &PeakRecord{
		SampleID:      sampleID,
		Polarity:      pol,
		MeasuredMZ:    mz,
		RetentionTime: rt,
		Adduct:        strings.TrimSpace(adduct),
		NeutralMass:   neutral,
	}, nil
}

// Mass returns the magnitude of the neutral mass, the value records are
// filtered and grouped on.
func (r *PeakRecord) Mass() float64 {
	return math.Abs(r.NeutralMass)
}

// Validate checks that a record carries usable values.
func (r *PeakRecord) Validate() error {
	var errs []string

	if r.SampleID == "" {
		errs = append(errs, "sample id is required")
	}
	if r.Adduct == "" {
		errs = append(errs, "adduct is required")
	}
	if math.IsNaN(r.MeasuredMZ) || math.IsInf(r.MeasuredMZ, 0) {
		errs = append(errs, "m/z is not a finite number")
	} else if r.MeasuredMZ <= 0 {
		errs = append(errs, "m/z must be positive")
	}
	if math.IsNaN(r.NeutralMass) || math.IsInf(r.NeutralMass, 0) {
		errs = append(errs, "neutral mass is not a finite number")
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "PeakRecord",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// Name returns the record name in format "Sample/polarity/Adduct"
func (r *PeakRecord) Name() string {
	return fmt.Sprintf("%s/%s/%s", r.SampleID, r.Polarity, r.Adduct)
}
