// Package importlog keeps the history of statement files imported into a
// data directory.
package importlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry is one imported file.
type Entry struct {
	Timestamp time.Time
	User      string
	File      string
	Format    string
	Saved     int
	Skipped   int
}

// Header is the CSV header of the history file.
const Header = "timestamp,user,file,format,saved,skipped"

const (
	numFields   = 6
	historyFile = "import-history.csv"
	colTime     = 0
	colUser     = 1
	colFile     = 2
	colFormat   = 3
	colSaved    = 4
	colSkipped  = 5
)

// Path returns the history file location under dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, historyFile)
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTime] = e.Timestamp.Format(time.RFC3339)
	row[colUser] = e.User
	row[colFile] = e.File
	row[colFormat] = e.Format
	row[colSaved] = strconv.Itoa(e.Saved)
	row[colSkipped] = strconv.Itoa(e.Skipped)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTime])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTime], err)
	}
	saved, err := strconv.Atoi(record[colSaved])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing saved count %q: %w", record[colSaved], err)
	}
	skipped, err := strconv.Atoi(record[colSkipped])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing skipped count %q: %w", record[colSkipped], err)
	}

	return Entry{
		Timestamp: ts,
		User:      record[colUser],
		File:      record[colFile],
		Format:    record[colFormat],
		Saved:     saved,
		Skipped:   skipped,
	}, nil
}

// Append writes entries to the history file, creating it with a header if needed.
func Append(dataDir string, entries []Entry) error {
	path := Path(dataDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening import history: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing import history: %w", err)
	}
	return f.Sync()
}

// Read returns every entry in the history file, oldest first.
// A missing file yields no entries.
func Read(dataDir string) ([]Entry, error) {
	f, err := os.Open(Path(dataDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening import history: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

// ForUser filters entries down to one user's imports.
func ForUser(entries []Entry, user string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.User == user {
			out = append(out, e)
		}
	}
	return out
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import history: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
