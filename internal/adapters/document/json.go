package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/csg33k/payslip-verify/internal/domain"
)

// JSONExtractor reads a domain.Document serialized as JSON, e.g. one cached
// from an earlier PDF extraction.
type JSONExtractor struct{}

func (JSONExtractor) Extract(_ context.Context, path string) (*domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var doc domain.Document
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Name == "" {
		doc.Name = filepath.Base(path)
	}
	return &doc, nil
}

// WriteJSON stores doc so that JSONExtractor can read it back.
func WriteJSON(path string, doc *domain.Document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
