// Package sqlite exports grouped mass features to a SQLite database
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ChrisMcGann/MSPeaks/pkg/core"
	"github.com/ChrisMcGann/MSPeaks/pkg/grouping"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// Date format for HeaderTable (ISO 8601)
	headerDateFormat = "2006-01-02"
	// Export schema version stored in HeaderTable
	schemaVersion = 1
)

// Writer handles writing features and their member peaks to a SQLite file.
// All rows are written inside one transaction that Finalize commits.
type Writer struct {
	db          *sql.DB
	tx          *sql.Tx
	outputPath  string
	featureStmt *sql.Stmt
	peakStmt    *sql.Stmt
	sampleStmt  *sql.Stmt
	featureID   int
	peakID      int
	mode        string
}

// NewWriter creates a new SQLite writer. An existing file at outputPath is
// replaced, so every export holds exactly one run.
func NewWriter(outputPath string) (*Writer, error) {
	if err := os.Remove(outputPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to replace existing database: %w", err)
	}

	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		featureID:  1,
		peakID:     1,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	w.tx, err = db.Begin()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := w.prepareStatements(); err != nil {
		w.tx.Rollback()
		db.Close()
		return nil, err
	}

	return w, nil
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS FeatureTable (
		FeatureId INTEGER PRIMARY KEY,
		Polarity TEXT NOT NULL,
		Mode TEXT NOT NULL,
		Label TEXT NOT NULL,
		CenterMass DOUBLE,
		LowMass DOUBLE,
		HighMass DOUBLE,
		RecordCount INTEGER,
		SampleCount INTEGER
	);

	CREATE TABLE IF NOT EXISTS PeakTable (
		PeakId INTEGER PRIMARY KEY,
		FeatureId INTEGER REFERENCES FeatureTable(FeatureId),
		SampleId TEXT NOT NULL,
		Polarity TEXT NOT NULL,
		MeasuredMZ DOUBLE,
		RetentionTime DOUBLE,
		Adduct TEXT,
		NeutralMass DOUBLE,
		SourceFeature TEXT,
		Annotation TEXT,
		SourceFile TEXT,
		Line INTEGER
	);

	CREATE TABLE IF NOT EXISTS SampleTable (
		Position INTEGER PRIMARY KEY,
		SampleId TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS HeaderTable (
		version INTEGER NOT NULL DEFAULT 0,
		CreationDate TEXT,
		Mode TEXT,
		Description TEXT,
		FeatureCount INTEGER,
		PeakCount INTEGER
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.featureStmt, err = w.tx.Prepare(`
		INSERT INTO FeatureTable (
			FeatureId, Polarity, Mode, Label, CenterMass, LowMass, HighMass,
			RecordCount, SampleCount
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare feature statement: %w", err)
	}

	w.peakStmt, err = w.tx.Prepare(`
		INSERT INTO PeakTable (
			PeakId, FeatureId, SampleId, Polarity, MeasuredMZ, RetentionTime,
			Adduct, NeutralMass, SourceFeature, Annotation, SourceFile, Line
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare peak statement: %w", err)
	}

	w.sampleStmt, err = w.tx.Prepare(`INSERT INTO SampleTable (Position, SampleId) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare sample statement: %w", err)
	}

	return nil
}

// WriteSamples stores the sample order used for the report columns
func (w *Writer) WriteSamples(order []string) error {
	for i, id := range order {
		if _, err := w.sampleStmt.Exec(i+1, id); err != nil {
			return fmt.Errorf("failed to insert sample %s: %w", id, err)
		}
	}
	return nil
}

// WriteTable writes every non-empty group of a table and its member records
func (w *Writer) WriteTable(t *grouping.Table) error {
	w.mode = t.Mode.String()
	for _, g := range t.Groups {
		if err := w.WriteGroup(g); err != nil {
			return err
		}
	}
	return nil
}

// WriteGroup writes a single feature and its member records
func (w *Writer) WriteGroup(g *grouping.Group) error {
	if g.Len() == 0 {
		return nil
	}

	_, err := w.featureStmt.Exec(
		w.featureID,         // FeatureId
		g.Polarity.String(), // Polarity
		g.Mode.String(),     // Mode
		g.Label(),           // Label
		g.Center,            // CenterMass
		g.Low,               // LowMass
		g.High,              // HighMass
		g.Len(),             // RecordCount
		len(g.SampleIDs()),  // SampleCount
	)
	if err != nil {
		return fmt.Errorf("failed to insert feature %s: %w", g.Label(), err)
	}

	for _, rec := range g.Records {
		if err := w.writePeak(rec); err != nil {
			return err
		}
	}

	w.featureID++
	return nil
}

func (w *Writer) writePeak(rec *core.PeakRecord) error {
	_, err := w.peakStmt.Exec(
		w.peakID,                   // PeakId
		w.featureID,                // FeatureId
		rec.SampleID,               // SampleId
		rec.Polarity.String(),      // Polarity
		rec.MeasuredMZ,             // MeasuredMZ
		rec.RetentionTime,          // RetentionTime
		rec.Adduct,                 // Adduct
		rec.NeutralMass,            // NeutralMass
		nullString(rec.FeatureID),  // SourceFeature
		nullString(rec.Annotation), // Annotation
		rec.SourceFile,             // SourceFile
		rec.Line,                   // Line
	)
	if err != nil {
		return fmt.Errorf("failed to insert peak %s: %w", rec.Name(), err)
	}
	w.peakID++
	return nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// Finalize writes the header row, commits and closes the database
func (w *Writer) Finalize() error {
	if w.db == nil {
		return nil
	}

	_, err := w.tx.Exec(`
		INSERT INTO HeaderTable (version, CreationDate, Mode, Description, FeatureCount, PeakCount)
		VALUES (?, ?, ?, ?, ?, ?)
	`, schemaVersion, time.Now().Format(headerDateFormat), w.mode, "mspeaks feature export", w.featureID-1, w.peakID-1)
	if err != nil {
		w.abort()
		return fmt.Errorf("failed to insert header: %w", err)
	}

	w.closeStatements()
	if err := w.tx.Commit(); err != nil {
		w.db.Close()
		w.db = nil
		return fmt.Errorf("failed to commit: %w", err)
	}

	// Close database
	err = w.db.Close()
	w.db = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Close discards uncommitted rows and closes the database. It is a no-op
// after Finalize.
func (w *Writer) Close() error {
	if w.db == nil {
		return nil
	}
	w.abort()
	return nil
}

func (w *Writer) abort() {
	w.closeStatements()
	w.tx.Rollback()
	w.db.Close()
	w.db = nil
}

func (w *Writer) closeStatements() {
	for _, stmt := range []*sql.Stmt{w.featureStmt, w.peakStmt, w.sampleStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	w.featureStmt, w.peakStmt, w.sampleStmt = nil, nil, nil
}
