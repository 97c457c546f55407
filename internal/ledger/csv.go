package ledger

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartspend-dev/smartspend/internal/model"
)

// Header is the first line of every ledger file.
const Header = "timestamp,type,category,amount"

const (
	numFields    = 4
	timeLayout   = "2006-01-02 15:04:05"
	colTimestamp = 0
	colType      = 1
	colCategory  = 2
	colAmount    = 3
)

// SkipFunc is told about every row ReadRecords drops. line is 1-based.
type SkipFunc func(line int, err error)

// ReadRecords reads all valid records from a ledger CSV reader. Every
// record occupies exactly one line, and each line is decoded on its own so
// a damaged row never runs into the rows after it. Rows that fail
// validation are handed to skip and left out; only reader failures are
// returned as errors.
func ReadRecords(r io.Reader, skip SkipFunc) ([]model.Record, error) {
	br := bufio.NewReader(r)

	var records []model.Record
	first := true
	for line := 1; ; line++ {
		text, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading ledger CSV: %w", err)
		}
		eof := err != nil

		text = strings.TrimRight(text, "\r\n")
		if text != "" {
			row, perr := decodeLine(text)
			switch {
			case perr != nil:
				report(skip, line, fmt.Errorf("%w: %w", ErrMalformedRecord, perr))
			case first && isHeader(row):
			default:
				rec, uerr := UnmarshalRecord(row)
				if uerr != nil {
					report(skip, line, uerr)
				} else {
					records = append(records, rec)
				}
			}
			first = false
		}
		if eof {
			break
		}
	}
	return records, nil
}

func decodeLine(text string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr.Read()
}

// AppendRecords appends records to an existing ledger writer (no header).
func AppendRecords(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)
	for i, rec := range records {
		if err := cw.Write(MarshalRecord(rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRecord converts a Record to a CSV row ([]string).
func MarshalRecord(rec model.Record) []string {
	row := make([]string, numFields)
	row[colTimestamp] = rec.Timestamp.Format(timeLayout)
	row[colType] = string(rec.Kind)
	row[colCategory] = singleLine(rec.Category)
	row[colAmount] = rec.Amount.String()
	return row
}

// UnmarshalRecord validates a CSV row and converts it to a Record. Every
// error it returns wraps ErrMalformedRecord.
func UnmarshalRecord(row []string) (model.Record, error) {
	if len(row) != numFields {
		return model.Record{}, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformedRecord, numFields, len(row))
	}

	ts, err := parseTimestamp(row[colTimestamp])
	if err != nil {
		return model.Record{}, fmt.Errorf("%w: parsing timestamp %q: %w", ErrMalformedRecord, row[colTimestamp], err)
	}

	kind, ok := model.ParseKind(row[colType])
	if !ok {
		return model.Record{}, fmt.Errorf("%w: unknown type %q", ErrMalformedRecord, row[colType])
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(row[colAmount]))
	if err != nil {
		return model.Record{}, fmt.Errorf("%w: parsing amount %q: %w", ErrMalformedRecord, row[colAmount], err)
	}
	if !amount.IsPositive() {
		return model.Record{}, fmt.Errorf("%w: amount %s is not positive", ErrMalformedRecord, amount)
	}

	return model.Record{
		Timestamp: ts,
		Kind:      kind,
		Category:  row[colCategory],
		Amount:    amount,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	ts, err := time.ParseInLocation(timeLayout, s, time.Local)
	if err == nil {
		return ts, nil
	}
	if ts, rerr := time.Parse(time.RFC3339, s); rerr == nil {
		return ts, nil
	}
	return time.Time{}, err
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// singleLine replaces line breaks with spaces so a record stays on one line.
func singleLine(s string) string {
	return lineBreaks.Replace(s)
}

func isHeader(row []string) bool {
	return strings.Join(row, ",") == Header
}

func report(skip SkipFunc, line int, err error) {
	if skip != nil {
		skip(line, err)
	}
}
