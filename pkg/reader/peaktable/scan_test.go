package peaktable

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSampleIDFromName(t *testing.T) {
	tests := []struct {
		name   string
		wantID string
		wantOK bool
	}{
		{"01111.peak.table", "01111", true},
		{"/data/tables/S2.peak.table", "S2", true},
		{".hidden.peak.table", "", false},
		{"S1.peak.table.bak", "", false},
		{"notes.txt", "", false},
		{".peak.table", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := SampleIDFromName(tt.name)
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("SampleIDFromName(%q) = %q, %v; want %q, %v", tt.name, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestFindTables(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"B.peak.table", "A.peak.table", "C.peak.table", "readme.md", ".A.peak.table"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "D.peak.table"), 0o755); err != nil {
		t.Fatal(err)
	}

	all, err := FindTables(dir, nil)
	if err != nil {
		t.Fatalf("FindTables() error: %v", err)
	}
	want := []string{
		filepath.Join(dir, "A.peak.table"),
		filepath.Join(dir, "B.peak.table"),
		filepath.Join(dir, "C.peak.table"),
	}
	if !reflect.DeepEqual(all, want) {
		t.Errorf("FindTables() = %v, want %v", all, want)
	}

	some, err := FindTables(dir, []string{"C", "A", "Z"})
	if err != nil {
		t.Fatalf("FindTables() error: %v", err)
	}
	if len(some) != 2 || filepath.Base(some[0]) != "A.peak.table" || filepath.Base(some[1]) != "C.peak.table" {
		t.Errorf("filtered FindTables() = %v", some)
	}
}

func TestFindTablesMissingDir(t *testing.T) {
	if _, err := FindTables(filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Error("expected error for missing directory")
	}
}
