package grouping

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ChrisMcGann/MSPeaks/pkg/core"
)

func massRecord(sample string, pol core.Polarity, mass float64) *core.PeakRecord {
	neutral := mass
	if pol == core.Negative {
		neutral = -mass
	}
	return &core.PeakRecord{SampleID: sample, Polarity: pol, MeasuredMZ: mass, Adduct: "[M]+", NeutralMass: neutral}
}

func TestCreateCenterPeaks(t *testing.T) {
	tests := []struct {
		name   string
		masses []float64
		want   []float64
	}{
		{
			name:   "already separated",
			masses: []float64{100.0, 100.1005, 101.0001},
			want:   []float64{100.0, 100.1005, 101.0001},
		},
		{
			name:   "near duplicates merge",
			masses: []float64{100.0000, 100.0001, 100.1005, 100.1006, 100.1007, 101.0001},
			want:   []float64{100.0, 100.1005, 101.0001},
		},
		{
			name:   "unsorted input",
			masses: []float64{101.0001, 100.1006, 100.0001, 100.0, 100.1005, 100.1007},
			want:   []float64{100.0, 100.1005, 101.0001},
		},
		{
			name:   "empty",
			masses: nil,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CreateCenterPeaks(tt.masses, nil, 5)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CreateCenterPeaks() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateCenterPeaksDoesNotMutateInput(t *testing.T) {
	in := []float64{3, 1, 2}
	CreateCenterPeaks(in, nil, 5)
	if !reflect.DeepEqual(in, []float64{3, 1, 2}) {
		t.Errorf("input modified: %v", in)
	}
}

func TestCreateCenterPeaksEdgeStartsNewCenter(t *testing.T) {
	c := 1000.0
	edge := c + core.CalcPPM(c, 10)
	got := CreateCenterPeaks([]float64{c, edge}, nil, 10)
	if len(got) != 2 {
		t.Fatalf("a mass exactly at center+tol must start a new center, got %v", got)
	}
}

func TestCreateCenterPeaksExtendsExisting(t *testing.T) {
	got := CreateCenterPeaks([]float64{200.0, 200.0001}, []float64{100.0}, 5)
	if !reflect.DeepEqual(got, []float64{100.0, 200.0}) {
		t.Errorf("CreateCenterPeaks() = %v", got)
	}
}

func TestCreateCenterPeaksStrictlyIncreasing(t *testing.T) {
	var masses []float64
	for i := 0; i < 500; i++ {
		masses = append(masses, 100+float64(i%97)*0.00031+float64(i)*0.0007)
	}
	centers := CreateCenterPeaks(masses, nil, 5)
	for i := 1; i < len(centers); i++ {
		if centers[i] <= centers[i-1] {
			t.Fatalf("centers not strictly increasing at %d: %v <= %v", i, centers[i], centers[i-1])
		}
	}
}

func TestCluster(t *testing.T) {
	recs := []*core.PeakRecord{
		massRecord("S2", core.Positive, 100.1006),
		massRecord("S1", core.Positive, 100.0),
		massRecord("S1", core.Positive, 101.0001),
		massRecord("S2", core.Positive, 100.0001),
		massRecord("S1", core.Positive, 100.1005),
		massRecord("S3", core.Positive, 100.1007),
	}

	table, err := Cluster(recs, core.Positive, 5)
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}

	if len(table.Groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(table.Groups))
	}
	wantCenters := []float64{100.0, 100.1005, 101.0001}
	wantLens := []int{2, 3, 1}
	for i, g := range table.Groups {
		if g.Center != wantCenters[i] {
			t.Errorf("group %d center = %v, want %v", i, g.Center, wantCenters[i])
		}
		if g.Len() != wantLens[i] {
			t.Errorf("group %d has %d records, want %d", i, g.Len(), wantLens[i])
		}
		if g.Mode != ModeTolerance || g.Polarity != core.Positive {
			t.Errorf("group %d has mode %v polarity %v", i, g.Mode, g.Polarity)
		}
	}

	if !reflect.DeepEqual(table.Groups[1].SampleIDs(), []string{"S1", "S2", "S3"}) {
		t.Errorf("SampleIDs() = %v", table.Groups[1].SampleIDs())
	}
	if table.Stats != (Stats{Loaded: 6, Assigned: 6, Dropped: 0}) {
		t.Errorf("Stats = %+v", table.Stats)
	}

	// members are kept in ascending mass order
	first := table.Groups[1].Records
	if first[0].Mass() != 100.1005 || first[2].Mass() != 100.1007 {
		t.Errorf("members not in mass order: %v, %v", first[0].Mass(), first[2].Mass())
	}
}

func TestClusterIndependentOfInputOrder(t *testing.T) {
	a := []*core.PeakRecord{
		massRecord("S1", core.Negative, 300.0),
		massRecord("S2", core.Negative, 300.0005),
		massRecord("S3", core.Negative, 300.0012),
		massRecord("S4", core.Negative, 450.2),
	}
	b := []*core.PeakRecord{a[3], a[1], a[2], a[0]}

	ta, _ := Cluster(a, core.Negative, 3)
	tb, _ := Cluster(b, core.Negative, 3)
	if len(ta.Groups) != len(tb.Groups) {
		t.Fatalf("group counts differ: %d vs %d", len(ta.Groups), len(tb.Groups))
	}
	for i := range ta.Groups {
		if ta.Groups[i].Center != tb.Groups[i].Center {
			t.Errorf("group %d centers differ: %v vs %v", i, ta.Groups[i].Center, tb.Groups[i].Center)
		}
		if !reflect.DeepEqual(ta.Groups[i].SampleIDs(), tb.Groups[i].SampleIDs()) {
			t.Errorf("group %d members differ", i)
		}
	}
}

func TestClusterInvalidPPM(t *testing.T) {
	for _, ppm := range []float64{0, -5} {
		_, err := Cluster(nil, core.Positive, ppm)
		if !errors.Is(err, ErrInvalidTolerance) {
			t.Errorf("ppm %v: expected ErrInvalidTolerance, got %v", ppm, err)
		}
	}
}

func TestClusterEmpty(t *testing.T) {
	table, err := Cluster(nil, core.Positive, 5)
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}
	if len(table.Groups) != 0 || table.Stats.Loaded != 0 {
		t.Errorf("expected empty table, got %+v", table)
	}
}

func TestMatchCenterHalfOpen(t *testing.T) {
	groups := []*Group{
		{Center: 100, Low: 99, High: 101},
		{Center: 200, Low: 199, High: 201},
	}

	tests := []struct {
		name string
		mass float64
		want *Group
	}{
		{"low edge inclusive", 99, groups[0]},
		{"inside", 100.5, groups[0]},
		{"high edge exclusive falls in gap", 101, nil},
		{"gap", 150, nil},
		{"second window", 200.99, groups[1]},
		{"below all", 10, nil},
		{"above all", 500, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchCenter(groups, tt.mass); got != tt.want {
				t.Errorf("matchCenter(%v) = %v, want %v", tt.mass, got, tt.want)
			}
		})
	}
}
