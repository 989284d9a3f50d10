package core

import (
	"math"
	"testing"
)

func TestCalcPPM(t *testing.T) {
	tests := []struct {
		name string
		mass float64
		ppm  float64
		want float64
	}{
		{"5 ppm of 100", 100.0, 5, 5.0e-4},
		{"10 ppm of 100", 100.0, 10, 1.0e-3},
		{"zero ppm", 250.0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalcPPM(tt.mass, tt.ppm)
			if got != tt.want {
				t.Errorf("CalcPPM(%v, %v) = %v, want %v", tt.mass, tt.ppm, got, tt.want)
			}
		})
	}
}

func TestCalcPPMLinear(t *testing.T) {
	base := CalcPPM(300.0, 5)
	if math.Abs(CalcPPM(600.0, 5)-2*base) > 1e-15 {
		t.Errorf("CalcPPM not linear in mass: %v vs %v", CalcPPM(600.0, 5), 2*base)
	}
	if math.Abs(CalcPPM(300.0, 15)-3*base) > 1e-15 {
		t.Errorf("CalcPPM not linear in ppm: %v vs %v", CalcPPM(300.0, 15), 3*base)
	}
}

func TestDerivedMasses(t *testing.T) {
	tests := []struct {
		name      string
		got       float64
		want      float64
		tolerance float64
	}{
		{"water", MassH2O, 18.010565, 1e-6},
		{"ammonia", MassNH3, 17.026549, 1e-6},
		{"sodium ion", MassSodiumIon, 22.989221, 1e-6},
		{"formic acid", MassFormicAcid, 46.005479, 1e-6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > tt.tolerance {
				t.Errorf("got %.6f, want %.6f (within %g)", tt.got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestRoundFloat(t *testing.T) {
	tests := []struct {
		name      string
		val       float64
		precision int
		want      float64
	}{
		{"round to 2 decimals", 3.14159, 2, 3.14},
		{"round to 4 decimals", 3.14159, 4, 3.1416},
		{"round to 0 decimals", 3.6, 0, 4.0},
		{"round negative", -3.14159, 2, -3.14},
		{"round to 6 decimals", 100.0000004, 6, 100.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundFloat(tt.val, tt.precision)
			if got != tt.want {
				t.Errorf("RoundFloat() = %v, want %v", got, tt.want)
			}
		})
	}
}
