package importer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TextParser reads one statement per line. Blank lines and lines starting
// with '#' are ignored.
type TextParser struct{}

// Format returns the parser name.
func (p *TextParser) Format() string { return "text" }

// Extensions returns the extensions handled by the parser.
func (p *TextParser) Extensions() []string { return []string{".txt"} }

// Parse reads statements from r.
func (p *TextParser) Parse(r io.Reader) ([]Statement, error) {
	sc := bufio.NewScanner(r)
	var stmts []Statement
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		stmts = append(stmts, Statement{Line: line, Text: text})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading line %d: %w", line+1, err)
	}
	return stmts, nil
}
