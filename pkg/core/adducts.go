// Package core provides adduct parsing and management
package core

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Adduct describes how an ion was formed from its neutral molecule.
type Adduct struct {
	Name         string
	Mass         float64 // signed mass added to Multiplicity*M by ionization
	Charge       int     // ion charge; negative for anions
	Multiplicity int     // number of neutral molecules in the ion (2 for [2M+H]+)
}

// AdductResolver looks up the mass contribution, charge and multiplicity of
// an adduct label.
type AdductResolver interface {
	Resolve(label string) (Adduct, error)
}

// UnknownAdductError is returned when an adduct label is not in the table.
type UnknownAdductError struct {
	Label string
}

func (e *UnknownAdductError) Error() string {
	return fmt.Sprintf("unknown adduct '%s'", e.Label)
}

// AdductTable stores adduct definitions keyed by label
type AdductTable struct {
	adducts map[string]Adduct
}

// NewAdductTable creates an empty adduct table
func NewAdductTable() *AdductTable {
	return &AdductTable{
		adducts: make(map[string]Adduct),
	}
}

// LoadFromCSV loads adducts from a CSV file (format: adduct,mass,charge,multiplicity).
// Multiplicity defaults to 1 when the column is missing.
func (t *AdductTable) LoadFromCSV(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	// Skip header line
	if scanner.Scan() {
		// header line
	}

	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 3 {
			return fmt.Errorf("line %d: invalid format, expected at least 3 comma-separated fields", lineNum)
		}

		name := strings.TrimSpace(parts[0])
		massStr := strings.TrimSpace(parts[1])
		chargeStr := strings.TrimSpace(parts[2])

		mass, err := strconv.ParseFloat(massStr, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid mass value '%s': %w", lineNum, massStr, err)
		}
		charge, err := strconv.Atoi(chargeStr)
		if err != nil {
			return fmt.Errorf("line %d: invalid charge value '%s': %w", lineNum, chargeStr, err)
		}

		multiplicity := 1
		if len(parts) > 3 {
			multStr := strings.TrimSpace(parts[3])
			multiplicity, err = strconv.Atoi(multStr)
			if err != nil {
				return fmt.Errorf("line %d: invalid multiplicity value '%s': %w", lineNum, multStr, err)
			}
			if multiplicity <= 0 {
				return fmt.Errorf("line %d: multiplicity must be positive, got %d", lineNum, multiplicity)
			}
		}

		t.Add(name, mass, charge, multiplicity)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading CSV: %w", err)
	}

	return nil
}

// Get returns the adduct definition for a label
func (t *AdductTable) Get(label string) (Adduct, bool) {
	a, ok := t.adducts[strings.TrimSpace(label)]
	return a, ok
}

// Resolve implements AdductResolver.
func (t *AdductTable) Resolve(label string) (Adduct, error) {
	a, ok := t.Get(label)
	if !ok {
		return Adduct{}, &UnknownAdductError{Label: label}
	}
	return a, nil
}

// Add adds or updates an adduct
func (t *AdductTable) Add(name string, mass float64, charge, multiplicity int) {
	name = strings.TrimSpace(name)
	t.adducts[name] = Adduct{
		Name:         name,
		Mass:         mass,
		Charge:       charge,
		Multiplicity: multiplicity,
	}
}

// Len returns the number of adducts in the table.
func (t *AdductTable) Len() int {
	return len(t.adducts)
}

// Labels returns the known adduct labels in sorted order.
func (t *AdductTable) Labels() []string {
	labels := make([]string, 0, len(t.adducts))
	for name := range t.adducts {
		labels = append(labels, name)
	}
	sort.Strings(labels)
	return labels
}

var adductPattern = regexp.MustCompile(`^\[\d*M[^\]]*\]\d*[+-]$`)

// LooksLikeAdduct reports whether s has the shape of an adduct label such as
// "[M+H]+" or "[M-2H]2-".
func LooksLikeAdduct(s string) bool {
	return adductPattern.MatchString(strings.TrimSpace(s))
}

// ParseAdductList splits the trailing part of a peak-table row into adduct
// labels and a free-text annotation. Labels may be separated by commas,
// whitespace or both; the first token that is not an adduct label starts the
// annotation.
func ParseAdductList(field string) ([]string, string) {
	var labels []string
	pieces := strings.Split(field, ",")
	for i, piece := range pieces {
		rest := piece
		for {
			rest = strings.TrimLeft(rest, " \t")
			if rest == "" {
				break
			}
			tok := rest
			end := strings.IndexAny(rest, " \t")
			if end >= 0 {
				tok = rest[:end]
			}
			if !LooksLikeAdduct(tok) {
				annotation := rest
				if i+1 < len(pieces) {
					annotation += "," + strings.Join(pieces[i+1:], ",")
				}
				return labels, strings.TrimSpace(annotation)
			}
			labels = append(labels, tok)
			if end < 0 {
				break
			}
			rest = rest[end:]
		}
	}
	return labels, ""
}

// SplitAdductField splits a dedicated adduct column into its labels. Every
// token is returned, shaped like an adduct or not, so that misspelled labels
// surface as resolution errors instead of being taken for annotation text.
func SplitAdductField(field string) []string {
	return strings.FieldsFunc(field, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

// DefaultAdductTable returns an AdductTable pre-loaded with common ESI adducts
func DefaultAdductTable() *AdductTable {
	t := NewAdductTable()

	// Positive mode
	t.Add("[M]+", -ElectronMass, 1, 1)
	t.Add("[M+H]+", ProtonMass, 1, 1)
	t.Add("[M+NH4]+", MassNH3+ProtonMass, 1, 1)
	t.Add("[M+Na]+", MassSodiumIon, 1, 1)
	t.Add("[M+K]+", MassPotassiumIon, 1, 1)
	t.Add("[M+H-H2O]+", ProtonMass-MassH2O, 1, 1)
	t.Add("[M-H2O+H]+", ProtonMass-MassH2O, 1, 1)
	t.Add("[M+H-2H2O]+", ProtonMass-2*MassH2O, 1, 1)
	t.Add("[M-2(H2O)+H]+", ProtonMass-2*MassH2O, 1, 1)
	t.Add("[M+H-NH3]+", ProtonMass-MassNH3, 1, 1)
	t.Add("[M-H2O+Na]+", MassSodiumIon-MassH2O, 1, 1)
	t.Add("[M-2(H2O)+Na]+", MassSodiumIon-2*MassH2O, 1, 1)
	t.Add("[M+2H]2+", 2*ProtonMass, 2, 1)
	t.Add("[M+H+Na]2+", ProtonMass+MassSodiumIon, 2, 1)
	t.Add("[M+H+NH4]2+", 2*ProtonMass+MassNH3, 2, 1)
	t.Add("[M+2Na]2+", 2*MassSodiumIon, 2, 1)
	t.Add("[2M+H]+", ProtonMass, 1, 2)
	t.Add("[2M+NH4]+", MassNH3+ProtonMass, 1, 2)
	t.Add("[2M+Na]+", MassSodiumIon, 1, 2)
	t.Add("[2M+K]+", MassPotassiumIon, 1, 2)
	t.Add("[2M-H2O+H]+", ProtonMass-MassH2O, 1, 2)
	t.Add("[2M-H2O+Na]+", MassSodiumIon-MassH2O, 1, 2)
	t.Add("[3M+H]+", ProtonMass, 1, 3)
	t.Add("[3M+Na]+", MassSodiumIon, 1, 3)

	// Negative mode
	t.Add("[M]-", ElectronMass, -1, 1)
	t.Add("[M-H]-", -ProtonMass, -1, 1)
	t.Add("[M-H2O-H]-", -ProtonMass-MassH2O, -1, 1)
	t.Add("[M+Cl]-", MassChlorideIon, -1, 1)
	t.Add("[M+Br]-", MassBromideIon, -1, 1)
	t.Add("[M+FA-H]-", MassFormicAcid-ProtonMass, -1, 1)
	t.Add("[M+HCOO]-", MassFormicAcid-ProtonMass, -1, 1)
	t.Add("[M+Hac-H]-", MassAceticAcid-ProtonMass, -1, 1)
	t.Add("[M+CH3COO]-", MassAceticAcid-ProtonMass, -1, 1)
	t.Add("[M+Na-2H]-", MassSodiumIon-2*ProtonMass, -1, 1)
	t.Add("[M+K-2H]-", MassPotassiumIon-2*ProtonMass, -1, 1)
	t.Add("[M-2H]2-", -2*ProtonMass, -2, 1)
	t.Add("[2M-H]-", -ProtonMass, -1, 2)
	t.Add("[2M+FA-H]-", MassFormicAcid-ProtonMass, -1, 2)
	t.Add("[2M+Hac-H]-", MassAceticAcid-ProtonMass, -1, 2)
	t.Add("[3M-H]-", -ProtonMass, -1, 3)

	return t
}
