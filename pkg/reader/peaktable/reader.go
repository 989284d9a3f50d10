// Package peaktable provides streaming readers for tab- or whitespace-delimited
// peak tables, expanding each row into one record per adduct.
package peaktable

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/MSPeaks/pkg/core"
)

// Minimum column counts for the two supported row layouts
const (
	fullColumns   = 8 // sample polarity mz adduct_count deionized_mz rt feature_id adducts [annotation]
	legacyColumns = 4 // sample polarity mz [rt] adducts...
)

const maxLineSize = 1024 * 1024

// MalformedRowError reports a row that could not be parsed. It is recoverable:
// the row is skipped and reading continues.
type MalformedRowError struct {
	File   string
	Line   int
	Reason string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("%s:%d: malformed row: %s", e.File, e.Line, e.Reason)
}

// RecordError reports one adduct interpretation of a row that could not be
// turned into a record. The other adducts of the row are unaffected.
type RecordError struct {
	File   string
	Line   int
	Adduct string
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s:%d: adduct %s: %v", e.File, e.Line, e.Adduct, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// ReaderStats counts what a reader has seen so far
type ReaderStats struct {
	Rows      int // data rows, excluding blanks, comments and header
	Records   int // records produced
	Malformed int // rows skipped
	Rejected  int // adduct interpretations skipped
}

// Reader provides streaming access to peak table files
type Reader struct {
	scanner  *bufio.Scanner
	resolver core.AdductResolver
	source   string
	lineNum  int
	sawData  bool
	current  []*core.PeakRecord
	warnings []error
	stats    ReaderStats
	err      error
}

// NewReader creates a new peak table reader. source names the input in
// diagnostics and on the produced records.
func NewReader(r io.Reader, source string, resolver core.AdductResolver) *Reader {
	if resolver == nil {
		resolver = core.DefaultAdductTable()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	return &Reader{
		scanner:  scanner,
		resolver: resolver,
		source:   source,
	}
}

// Next advances to the next row that produced at least one record. Returns
// false at end of input or on a read error.
func (r *Reader) Next() bool {
	r.current = nil

	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimSpace(r.scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields, tabbed := splitRow(line)
		if !r.sawData {
			r.sawData = true
			if isHeader(fields) {
				continue
			}
		}
		r.stats.Rows++

		recs, err := r.parseRow(fields, tabbed)
		if err != nil {
			r.stats.Malformed++
			r.warnings = append(r.warnings, err)
			continue
		}
		if len(recs) == 0 {
			continue
		}

		r.stats.Records += len(recs)
		r.current = recs
		return true
	}

	if err := r.scanner.Err(); err != nil {
		r.err = fmt.Errorf("%s: %w", r.source, err)
	}
	return false
}

// Records returns the records expanded from the current row
func (r *Reader) Records() []*core.PeakRecord {
	return r.current
}

// Warnings returns the recoverable problems encountered so far
func (r *Reader) Warnings() []error {
	return r.warnings
}

// Stats returns the reader's counters
func (r *Reader) Stats() ReaderStats {
	return r.stats
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// splitRow splits on tabs when the row has any, otherwise on runs of
// whitespace. tabbed reports which, since only tab-delimited rows keep their
// column boundaries.
func splitRow(line string) (fields []string, tabbed bool) {
	if !strings.Contains(line, "\t") {
		return strings.Fields(line), false
	}
	fields = strings.Split(line, "\t")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields, true
}

// isHeader reports whether the first row is a column header rather than data
func isHeader(fields []string) bool {
	if len(fields) < 3 {
		return false
	}
	_, err := strconv.ParseFloat(fields[2], 64)
	return err != nil
}

// parseRow expands one row into records, one per resolvable adduct
func (r *Reader) parseRow(fields []string, tabbed bool) ([]*core.PeakRecord, error) {
	if len(fields) < legacyColumns {
		return nil, r.malformed("expected at least %d columns, got %d", legacyColumns, len(fields))
	}

	sampleID := fields[0]
	pol, err := core.ParsePolarity(fields[1])
	if err != nil {
		return nil, r.malformed("%v", err)
	}
	mz, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return nil, r.malformed("invalid m/z value '%s'", fields[2])
	}

	var (
		rt          float64
		adductCount int
		deionized   float64
		featureID   string
		tail        []string
	)

	full := false
	switch {
	case isFullRow(fields):
		full = true
		adductCount, _ = strconv.Atoi(fields[3])
		deionized, _ = strconv.ParseFloat(fields[4], 64)
		rt, _ = strconv.ParseFloat(fields[5], 64)
		featureID = fields[6]
		tail = fields[7:]
	case len(fields) > legacyColumns && isFloat(fields[3]):
		rt, _ = strconv.ParseFloat(fields[3], 64)
		tail = fields[4:]
	case startsWithAdduct(fields[3]):
		// oldest tables carry no retention time
		tail = fields[3:]
	default:
		return nil, r.malformed("expected %d columns (full) or %d+ columns (legacy), got %d",
			fullColumns, legacyColumns+1, len(fields))
	}

	labels, annotation := splitTail(tail, tabbed, full)
	if len(labels) == 0 {
		return nil, r.malformed("no adduct labels")
	}

	var recs []*core.PeakRecord
	for _, label := range labels {
		rec, err := core.NewPeakRecord(sampleID, pol, mz, rt, label, r.resolver)
		if err == nil {
			err = rec.Validate()
		}
		if err != nil {
			r.stats.Rejected++
			r.warnings = append(r.warnings, &RecordError{
				File:   r.source,
				Line:   r.lineNum,
				Adduct: label,
				Err:    err,
			})
			continue
		}

		rec.AdductCount = adductCount
		rec.DeionizedMZ = deionized
		rec.FeatureID = featureID
		rec.Annotation = annotation
		rec.SourceFile = r.source
		rec.Line = r.lineNum
		recs = append(recs, rec)
	}

	return recs, nil
}

// splitTail separates adduct labels from annotation text. A tab-delimited
// row has a dedicated adduct column whose tokens are all labels; full rows
// keep the annotation in the columns after it. Without column boundaries the
// first token not shaped like an adduct starts the annotation.
func splitTail(tail []string, tabbed, full bool) ([]string, string) {
	if !tabbed {
		return core.ParseAdductList(strings.Join(tail, " "))
	}

	labels := core.SplitAdductField(tail[0])
	rest := tail[1:]
	if full {
		return labels, strings.TrimSpace(strings.Join(rest, " "))
	}
	more, annotation := core.ParseAdductList(strings.Join(rest, " "))
	return append(labels, more...), annotation
}

// startsWithAdduct reports whether the first token of s is an adduct label
func startsWithAdduct(s string) bool {
	tokens := core.SplitAdductField(s)
	return len(tokens) > 0 && core.LooksLikeAdduct(tokens[0])
}

func (r *Reader) malformed(format string, args ...any) error {
	return &MalformedRowError{
		File:   r.source,
		Line:   r.lineNum,
		Reason: fmt.Sprintf(format, args...),
	}
}

// isFullRow recognises the full layout by its numeric adduct_count,
// deionized_mz and retention_time columns
func isFullRow(fields []string) bool {
	if len(fields) < fullColumns {
		return false
	}
	if _, err := strconv.Atoi(fields[3]); err != nil {
		return false
	}
	return isFloat(fields[4]) && isFloat(fields[5])
}

func isFloat(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
