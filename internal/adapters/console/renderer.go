// Package console prints a report as PASS/FAIL/WARN/NOTE lines, colored for
// a terminal.
package console

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/csg33k/payslip-verify/internal/domain"
	"github.com/csg33k/payslip-verify/internal/ports"
)

const (
	red    = "\033[91m"
	green  = "\033[92m"
	yellow = "\033[93m"
	reset  = "\033[0m"
)

var colors = map[domain.Severity]string{
	domain.SeverityPass: green,
	domain.SeverityFail: red,
	domain.SeverityWarn: yellow,
}

type Renderer struct {
	Color bool
}

var _ ports.ReportRenderer = Renderer{}

func (c Renderer) Render(_ context.Context, r *domain.Report, w io.Writer) error {
	for _, f := range r.Findings {
		if _, err := io.WriteString(w, c.line(f)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%d passed, %d failed, %d warnings, %d notes\n",
		r.Count(domain.SeverityPass), r.Count(domain.SeverityFail),
		r.Count(domain.SeverityWarn), r.Count(domain.SeverityNote))
	return err
}

func (c Renderer) line(f domain.Finding) string {
	var b strings.Builder
	b.WriteString(string(f.Severity))
	b.WriteString(": ")
	b.WriteString(f.Message)
	if exp, ok := f.Context["expected"]; ok {
		fmt.Fprintf(&b, "\nExpected: %s\nActual: %s", exp, f.Context["actual"])
	}
	s := b.String()
	if col, ok := colors[f.Severity]; ok && c.Color {
		s = col + s + reset
	}
	return s + "\n"
}
