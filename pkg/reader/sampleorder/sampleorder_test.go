package sampleorder

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	input := `# sample list
11011	9913	meat	natural
S2.peak.table

S1 extra columns
11011
  S3  
`
	ids, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	want := []string{"11011", "S2", "S1", "S3"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("Read() = %v, want %v", ids, want)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "order.txt")
	if err := os.WriteFile(path, []byte("B\nA\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ids, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"B", "A"}) {
		t.Errorf("ReadFile() = %v", ids)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestResolve(t *testing.T) {
	seen := []string{"A", "B"}
	if got := Resolve(nil, seen); !reflect.DeepEqual(got, seen) {
		t.Errorf("Resolve(nil) = %v", got)
	}
	explicit := []string{"B", "C"}
	if got := Resolve(explicit, seen); !reflect.DeepEqual(got, explicit) {
		t.Errorf("Resolve(explicit) = %v", got)
	}
}
