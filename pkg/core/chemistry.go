// Package core provides the chemistry constants and peak model used to turn
// observed m/z values into neutral masses.
package core

import "math"

// Atomic masses (monoisotopic)
const (
	MassH  = 1.0078250321
	MassC  = 12.0000000000
	MassN  = 14.0030740052
	MassO  = 15.9949146221
	MassNa = 22.9897692809
	MassK  = 38.9637064864
	MassCl = 34.9688527300
	MassBr = 78.9183376000

	// Proton and electron masses for charge calculations
	ProtonMass   = 1.00727646688
	ElectronMass = 0.00054857990946
)

// Neutral losses and additions used by the default adduct table
const (
	MassH2O          = 2*MassH + MassO
	MassNH3          = MassN + 3*MassH
	MassFormicAcid   = MassC + 2*MassH + 2*MassO
	MassAceticAcid   = 2*MassC + 4*MassH + 2*MassO
	MassSodiumIon    = MassNa - ElectronMass
	MassPotassiumIon = MassK - ElectronMass
	MassChlorideIon  = MassCl + ElectronMass
	MassBromideIon   = MassBr + ElectronMass
)

// ppmUnit converts a parts-per-million figure to a fraction.
const ppmUnit = 0.000001

// CalcPPM returns the absolute mass window of ppm parts per million around mass.
func CalcPPM(mass, ppm float64) float64 {
	return mass * ppmUnit * ppm
}

// RoundFloat rounds a float to n decimal places
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
