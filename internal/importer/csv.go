package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// CSVParser reads `text[,amount]` rows. A first row of `text,amount` is
// treated as a header. An empty amount leaves the amount to the statement
// text.
type CSVParser struct{}

const (
	csvColText   = 0
	csvColAmount = 1
)

// Format returns the parser name.
func (p *CSVParser) Format() string { return "csv" }

// Extensions returns the extensions handled by the parser.
func (p *CSVParser) Extensions() []string { return []string{".csv"} }

// Parse reads statements from r.
func (p *CSVParser) Parse(r io.Reader) ([]Statement, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var stmts []Statement
	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading statements CSV: %w", err)
		}
		line, _ := cr.FieldPos(0)

		if first {
			first = false
			if isCSVHeader(rec) {
				continue
			}
		}

		stmt, err := parseCSVRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if stmt.Text == "" {
			continue
		}
		stmt.Line = line
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func parseCSVRow(rec []string) (Statement, error) {
	if len(rec) > 2 {
		return Statement{}, fmt.Errorf("expected at most 2 fields, got %d", len(rec))
	}
	stmt := Statement{Text: strings.TrimSpace(rec[csvColText])}
	if len(rec) <= csvColAmount {
		return stmt, nil
	}
	raw := strings.TrimSpace(rec[csvColAmount])
	if raw == "" {
		return stmt, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return Statement{}, fmt.Errorf("parsing amount %q: %w", raw, err)
	}
	stmt.Amount = &amount
	return stmt, nil
}

func isCSVHeader(rec []string) bool {
	return strings.EqualFold(strings.TrimSpace(rec[csvColText]), "text")
}
