// Package gemini extracts payslip tables from PDF files with the Gemini
// multimodal API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/csg33k/payslip-verify/internal/domain"
	"github.com/csg33k/payslip-verify/internal/ports"
)

const DefaultModel = "gemini-2.0-flash"

// Extractor implements ports.TableExtractor for PDF payslips.
type Extractor struct {
	client *genai.Client
	model  string
}

var _ ports.TableExtractor = (*Extractor)(nil)

func New(ctx context.Context, apiKey, model string) (*Extractor, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: no API key")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Extractor{client: client, model: model}, nil
}

func (x *Extractor) Close() error { return x.client.Close() }

func (x *Extractor) Extract(ctx context.Context, path string) (*domain.Document, error) {
	pdf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	model := x.client.GenerativeModel(x.model)
	model.SetTemperature(0)

	resp, err := model.GenerateContent(ctx,
		genai.Text(payslipPrompt),
		genai.Blob{MIMEType: "application/pdf", Data: pdf},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: gemini: %w", path, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%s: gemini returned no candidates", path)
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected gemini response part %T", path, resp.Candidates[0].Content.Parts[0])
	}
	doc, err := decodeDocument(string(text))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Name = filepath.Base(path)
	slog.Debug("gemini extraction done", "path", path, "rows", len(doc.Rows))
	return doc, nil
}

const payslipPrompt = `Extract the payslip line-item table from the attached PDF.
Return a single JSON object with this shape:

{
  "text": "all free text of the first page, including the payslip date",
  "rows": [
    {"label": "Monthly wage", "cells": {"Rate": "", "Sub-total": "", "Total": "10'000.00"}},
    {"label": "January 2022 / 30 SI-Days / ZH / A0N", "cells": {"Sub-total": "10'000.00"}}
  ]
}

Use the "Payroll type" column as the label. Keep every row in document order,
including sub-total rows. Copy numbers exactly as printed, with their sign,
thousands separators and percent signs. Leave a cell empty when the column is
empty for that row.
Do not include any explanations, markdown formatting, or additional text outside the JSON object.`

// cleanJSONResponse strips the markdown code fence Gemini sometimes puts
// around JSON.
func cleanJSONResponse(s string) string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "```json")
	s = strings.TrimPrefix(strings.TrimSpace(s), "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func decodeDocument(raw string) (*domain.Document, error) {
	var doc domain.Document
	if err := json.Unmarshal([]byte(cleanJSONResponse(raw)), &doc); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}
	if len(doc.Rows) == 0 {
		return nil, errors.New("gemini response has no table rows")
	}
	return &doc, nil
}
