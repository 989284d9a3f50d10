package sqlite

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChrisMcGann/MSPeaks/pkg/core"
	"github.com/ChrisMcGann/MSPeaks/pkg/grouping"
)

func newWriter(t *testing.T) (*Writer, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "features.db")
	return openWriter(t, path), path
}

func openWriter(t *testing.T, path string) *Writer {
	t.Helper()
	w, err := NewWriter(path)
	if err != nil {
		if strings.Contains(err.Error(), "CGO_ENABLED") {
			t.Skipf("sqlite3 driver unavailable: %v", err)
		}
		t.Fatalf("NewWriter() error = %v", err)
	}
	return w
}

func testTable() *grouping.Table {
	recs := []*core.PeakRecord{
		{SampleID: "A", Polarity: core.Positive, MeasuredMZ: 301.007, Adduct: "[M+H]+", NeutralMass: 300.0, FeatureID: "F1"},
		{SampleID: "B", Polarity: core.Positive, MeasuredMZ: 301.0072, Adduct: "[M+H]+", NeutralMass: 300.0002, Annotation: "citrate"},
		{SampleID: "B", Polarity: core.Positive, MeasuredMZ: 451.007, Adduct: "[M+H]+", NeutralMass: 450.0},
	}
	table, _ := grouping.Cluster(recs, core.Positive, 5)
	return table
}

func count(t *testing.T, db *sql.DB, query string) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query).Scan(&n); err != nil {
		t.Fatalf("%s: %v", query, err)
	}
	return n
}

func TestWriterExport(t *testing.T) {
	w, path := newWriter(t)

	if err := w.WriteSamples([]string{"A", "B"}); err != nil {
		t.Fatalf("WriteSamples() error = %v", err)
	}
	if err := w.WriteTable(testTable()); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if n := count(t, db, "SELECT COUNT(*) FROM FeatureTable"); n != 2 {
		t.Errorf("features = %d, want 2", n)
	}
	if n := count(t, db, "SELECT COUNT(*) FROM PeakTable"); n != 3 {
		t.Errorf("peaks = %d, want 3", n)
	}
	if n := count(t, db, "SELECT COUNT(*) FROM SampleTable"); n != 2 {
		t.Errorf("samples = %d, want 2", n)
	}
	if n := count(t, db, "SELECT SampleCount FROM FeatureTable WHERE FeatureId = 1"); n != 2 {
		t.Errorf("first feature sample count = %d, want 2", n)
	}
	if n := count(t, db, "SELECT COUNT(*) FROM PeakTable WHERE FeatureId = 2"); n != 1 {
		t.Errorf("second feature peaks = %d, want 1", n)
	}

	var mode string
	var features, peaks int
	if err := db.QueryRow("SELECT Mode, FeatureCount, PeakCount FROM HeaderTable").Scan(&mode, &features, &peaks); err != nil {
		t.Fatalf("header: %v", err)
	}
	if mode != "tolerance" || features != 2 || peaks != 3 {
		t.Errorf("header = (%s, %d, %d), want (tolerance, 2, 3)", mode, features, peaks)
	}
}

func TestWriterCloseDiscards(t *testing.T) {
	w, path := newWriter(t)

	if err := w.WriteTable(testTable()); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Finalize(); err != nil {
		t.Errorf("Finalize() after Close error = %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if n := count(t, db, "SELECT COUNT(*) FROM FeatureTable"); n != 0 {
		t.Errorf("features = %d after Close, want 0", n)
	}
}

func TestWriterReplacesExistingExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.db")

	for run := 1; run <= 2; run++ {
		w := openWriter(t, path)
		if err := w.WriteSamples([]string{"A", "B"}); err != nil {
			t.Fatalf("run %d: WriteSamples() error = %v", run, err)
		}
		if err := w.WriteTable(testTable()); err != nil {
			t.Fatalf("run %d: WriteTable() error = %v", run, err)
		}
		if err := w.Finalize(); err != nil {
			t.Fatalf("run %d: Finalize() error = %v", run, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if n := count(t, db, "SELECT COUNT(*) FROM FeatureTable"); n != 2 {
		t.Errorf("features = %d, want 2 from the last run only", n)
	}
	if n := count(t, db, "SELECT COUNT(*) FROM SampleTable"); n != 2 {
		t.Errorf("samples = %d, want 2", n)
	}
	if n := count(t, db, "SELECT COUNT(*) FROM HeaderTable"); n != 1 {
		t.Errorf("header rows = %d, want 1", n)
	}
}
