// Package jsonreport writes a report as indented JSON.
package jsonreport

import (
	"context"
	"io"

	"github.com/goccy/go-json"

	"github.com/csg33k/payslip-verify/internal/domain"
	"github.com/csg33k/payslip-verify/internal/ports"
)

type Renderer struct{}

var _ ports.ReportRenderer = Renderer{}

func (Renderer) Render(_ context.Context, r *domain.Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
