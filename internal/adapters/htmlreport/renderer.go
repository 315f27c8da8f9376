// Package htmlreport renders a report as a standalone HTML page.
package htmlreport

import (
	"context"
	"io"

	"github.com/csg33k/payslip-verify/internal/domain"
	"github.com/csg33k/payslip-verify/internal/ports"
	"github.com/csg33k/payslip-verify/internal/templates"
)

type Renderer struct{}

var _ ports.ReportRenderer = Renderer{}

func (Renderer) Render(ctx context.Context, r *domain.Report, w io.Writer) error {
	return templates.Report(r).Render(ctx, w)
}
