package gemini

import (
	"context"
	"strings"
	"testing"
)

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"No markdown", `{"rows": []}`, `{"rows": []}`},
		{"With markdown code block", "```json\n{\"rows\": []}\n```", `{"rows": []}`},
		{"Without language", "```\n{\"rows\": []}\n```", `{"rows": []}`},
		{"Extra whitespace", "  \n  {\"rows\": []}  \n  ", `{"rows": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONResponse(tt.input); got != tt.expected {
				t.Errorf("cleanJSONResponse(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDecodeDocument(t *testing.T) {
	raw := "```json\n" + `{
  "text": "ACME GmbH\nDate 25.01.2022",
  "rows": [
    {"label": "Monthly wage", "cells": {"Total": "10'000.00"}},
    {"label": "January 2022 / 30 SI-Days / ZH / A0N", "cells": {"Sub-total": "10'000.00", "Total": ""}}
  ]
}` + "\n```"
	doc, err := decodeDocument(raw)
	if err != nil {
		t.Fatalf("decodeDocument: %v", err)
	}
	if !strings.Contains(doc.Text, "25.01.2022") || len(doc.Rows) != 2 {
		t.Fatalf("got %+v", doc)
	}
	if doc.Rows[1].Cells["Sub-total"] != "10'000.00" {
		t.Errorf("sub-total cell %q", doc.Rows[1].Cells["Sub-total"])
	}
}

func TestDecodeDocument_Rejects(t *testing.T) {
	for _, raw := range []string{"not json", `{"text": "x", "rows": []}`} {
		if _, err := decodeDocument(raw); err == nil {
			t.Errorf("%q: expected an error", raw)
		}
	}
}

func TestPromptNamesColumns(t *testing.T) {
	for _, field := range []string{"Payroll type", "Sub-total", "Total", `"label"`, `"cells"`} {
		if !strings.Contains(payslipPrompt, field) {
			t.Errorf("prompt does not mention %q", field)
		}
	}
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := New(context.Background(), "", ""); err == nil {
		t.Fatal("expected an error without an API key")
	}
}
