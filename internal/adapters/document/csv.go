// Package document reads payslip tables that were already extracted to CSV
// or JSON, and routes a payslip path to the extractor for its file type.
package document

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/csg33k/payslip-verify/internal/domain"
)

// LabelColumn holds the line-item name in extracted payslip tables.
const LabelColumn = "Payroll type"

// CSVExtractor reads a table exported as CSV. Leading lines starting with '#'
// carry the free text of the payslip (the effective date is read from it);
// the first other line is the header row.
type CSVExtractor struct{}

func (CSVExtractor) Extract(_ context.Context, path string) (*domain.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, body := splitPreamble(raw)
	records, err := gocsv.CSVToMaps(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc := &domain.Document{Name: filepath.Base(path), Text: text}
	for i, rec := range records {
		label, ok := rec[LabelColumn]
		if !ok {
			return nil, fmt.Errorf("%s: record %d: no %q column", path, i+1, LabelColumn)
		}
		delete(rec, LabelColumn)
		doc.Rows = append(doc.Rows, domain.Row{Label: label, Cells: rec})
	}
	return doc, nil
}

func splitPreamble(raw []byte) (string, []byte) {
	var text []string
	rest := raw
	for len(rest) > 0 && rest[0] == '#' {
		line, after, _ := bytes.Cut(rest, []byte("\n"))
		text = append(text, strings.TrimSpace(string(line[1:])))
		rest = after
	}
	return strings.Join(text, "\n"), rest
}
