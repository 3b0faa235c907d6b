// Package runlog records report runs in logs/report-runs.csv. Each row keeps
// a digest of the rendered output so two runs of the same report can be
// compared without storing the output itself.
package runlog

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Run is one row in the run log.
type Run struct {
	ID         uuid.UUID
	Timestamp  time.Time
	Report     string
	Parameters string
	Digest     string
	Warnings   int
}

// Header is the CSV header for report-runs.csv.
const Header = "run_id,timestamp,report,parameters,digest,warnings"

const (
	numFields     = 6
	logDir        = "logs"
	logFile       = "logs/report-runs.csv"
	colID         = 0
	colTimestamp  = 1
	colReport     = 2
	colParameters = 3
	colDigest     = 4
	colWarnings   = 5
)

// Digest returns the hex sha256 of output.
func Digest(output []byte) string {
	sum := sha256.Sum256(output)
	return hex.EncodeToString(sum[:])
}

// NewRun builds a run for output produced at now.
func NewRun(now time.Time, report, parameters string, output []byte, warnings int) Run {
	return Run{
		ID:         uuid.New(),
		Timestamp:  now.UTC(),
		Report:     report,
		Parameters: parameters,
		Digest:     Digest(output),
		Warnings:   warnings,
	}
}

// MarshalRun converts a Run to a CSV row.
func MarshalRun(r Run) []string {
	row := make([]string, numFields)
	row[colID] = r.ID.String()
	row[colTimestamp] = r.Timestamp.Format(time.RFC3339)
	row[colReport] = r.Report
	row[colParameters] = r.Parameters
	row[colDigest] = r.Digest
	row[colWarnings] = strconv.Itoa(r.Warnings)
	return row
}

// UnmarshalRun converts a CSV row to a Run.
func UnmarshalRun(record []string) (Run, error) {
	if len(record) != numFields {
		return Run{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id, err := uuid.Parse(record[colID])
	if err != nil {
		return Run{}, fmt.Errorf("parsing run id %q: %w", record[colID], err)
	}
	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Run{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	warnings, err := strconv.Atoi(record[colWarnings])
	if err != nil {
		return Run{}, fmt.Errorf("parsing warnings %q: %w", record[colWarnings], err)
	}

	return Run{
		ID:         id,
		Timestamp:  ts,
		Report:     record[colReport],
		Parameters: record[colParameters],
		Digest:     record[colDigest],
		Warnings:   warnings,
	}, nil
}

// Append writes runs to <booksDir>/logs/report-runs.csv, creating the file
// and header if needed.
func Append(booksDir string, runs []Run) error {
	dir := filepath.Join(booksDir, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(booksDir, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, r := range runs {
		if err := cw.Write(MarshalRun(r)); err != nil {
			return fmt.Errorf("writing run %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all runs from the log, nil when there is none yet.
func Read(booksDir string) ([]Run, error) {
	f, err := os.Open(filepath.Join(booksDir, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readRuns(f)
}

// Latest returns the most recent earlier run of the same report and
// parameters, if any.
func Latest(runs []Run, report, parameters string) (Run, bool) {
	for i := len(runs) - 1; i >= 0; i-- {
		if runs[i].Report == report && runs[i].Parameters == parameters {
			return runs[i], true
		}
	}
	return Run{}, false
}

func readRuns(r io.Reader) ([]Run, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var runs []Run
	for i, rec := range records[1:] {
		run, err := UnmarshalRun(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}
