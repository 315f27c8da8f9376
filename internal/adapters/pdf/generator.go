// Package pdf renders a verification report as a printable PDF: a header bar,
// the documents that were checked, the finding counts and one table row per
// finding. Rows never split across pages; the table header repeats after a
// page break.
package pdf

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/csg33k/payslip-verify/internal/domain"
	"github.com/csg33k/payslip-verify/internal/ports"
)

const (
	lineH   = 4.5
	headerH = 10
)

type rgb struct{ r, g, b int }

var severityColors = map[domain.Severity]rgb{
	domain.SeverityPass: {44, 110, 73},
	domain.SeverityFail: {192, 57, 43},
	domain.SeverityWarn: {183, 121, 31},
	domain.SeverityNote: {107, 94, 78},
}

type Renderer struct{}

var _ ports.ReportRenderer = Renderer{}

func (Renderer) Render(_ context.Context, r *domain.Report, w io.Writer) error {
	return GeneratePDF(r, w)
}

// GeneratePDF writes r as an A4 PDF to w.
func GeneratePDF(r *domain.Report, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(false, 18)
	pdf.AliasNbPages("{nb}")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetHeaderFunc(func() { drawHeader(pdf) })
	pdf.SetFooterFunc(func() { drawFooter(pdf, r) })

	pdf.AddPage()
	_, marginT, _, _ := pdf.GetMargins()
	y := marginT + headerH + 3
	y = drawDocuments(pdf, tr, r, y)
	y = drawSummary(pdf, r, y+4)
	drawFindings(pdf, tr, r.Findings, y+5)

	return pdf.Output(w)
}

func contentWidth(pdf *fpdf.Fpdf) float64 {
	pageW, _ := pdf.GetPageSize()
	marginL, _, marginR, _ := pdf.GetMargins()
	return pageW - marginL - marginR
}

func drawHeader(pdf *fpdf.Fpdf) {
	marginL, marginT, _, _ := pdf.GetMargins()
	contentW := contentWidth(pdf)

	pdf.SetFillColor(30, 30, 30)
	pdf.Rect(marginL, marginT, contentW, headerH, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(marginL+2, marginT+1.5)
	pdf.CellFormat(contentW-30, 7, "PAYSLIP VERIFICATION REPORT", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(26, 7, "Page "+strconv.Itoa(pdf.PageNo())+" of {nb}", "", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func drawFooter(pdf *fpdf.Fpdf, r *domain.Report) {
	marginL, _, _, marginB := pdf.GetMargins()
	_, pageH := pdf.GetPageSize()
	contentW := contentWidth(pdf)

	pdf.SetXY(marginL, pageH-marginB+4)
	pdf.SetFont("Helvetica", "I", 7.5)
	pdf.SetTextColor(130, 130, 130)
	pdf.CellFormat(contentW/2, 5, "Run "+r.RunID.String(), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 5, "Generated "+r.CreatedAt.Format("02.01.2006 15:04"), "", 0, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func sectionTitle(pdf *fpdf.Fpdf, title string, y float64) float64 {
	marginL, _, _, _ := pdf.GetMargins()
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(contentWidth(pdf), 5.5, title, "LRT", 1, "L", true, 0, "")
	return y + 5.5
}

func drawDocuments(pdf *fpdf.Fpdf, tr func(string) string, r *domain.Report, y float64) float64 {
	marginL, _, _, _ := pdf.GetMargins()
	contentW := contentWidth(pdf)
	y = sectionTitle(pdf, "DOCUMENTS", y)

	pdf.SetFont("Helvetica", "", 9)
	row := func(role string, d domain.DocumentSummary, border string) {
		date := "-"
		if !d.EffectiveDate.IsZero() {
			date = d.EffectiveDate.Format("02.01.2006")
		}
		pdf.SetXY(marginL, y)
		pdf.CellFormat(contentW*0.2, 6, role, "L"+border, 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.55, 6, tr(d.Name), border, 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.25, 6, date, "R"+border, 1, "R", false, 0, "")
		y += 6
	}
	if len(r.Supplements) == 0 {
		row("Primary", r.Primary, "B")
		return y
	}
	row("Primary", r.Primary, "")
	for i, s := range r.Supplements {
		border := ""
		if i == len(r.Supplements)-1 {
			border = "B"
		}
		row("Supplementary", s, border)
	}
	return y
}

func drawSummary(pdf *fpdf.Fpdf, r *domain.Report, y float64) float64 {
	marginL, _, _, _ := pdf.GetMargins()
	contentW := contentWidth(pdf)
	y = sectionTitle(pdf, "SUMMARY", y)

	pdf.SetXY(marginL, y)
	sevs := []domain.Severity{domain.SeverityPass, domain.SeverityFail, domain.SeverityWarn, domain.SeverityNote}
	cellW := contentW / float64(len(sevs))
	for i, sev := range sevs {
		border := "B"
		switch i {
		case 0:
			border = "LB"
		case len(sevs) - 1:
			border = "RB"
		}
		c := severityColors[sev]
		pdf.SetTextColor(c.r, c.g, c.b)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(cellW, 7, string(sev)+"  "+strconv.Itoa(r.Count(sev)), border, 0, "C", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	return y + 7
}

func drawTableHeader(pdf *fpdf.Fpdf, y float64, sevW, checkW, msgW float64) float64 {
	marginL, _, _, _ := pdf.GetMargins()
	pdf.SetFillColor(30, 30, 30)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 8.5)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(sevW, 7, "Severity", "1", 0, "C", true, 0, "")
	pdf.CellFormat(checkW, 7, "Check", "1", 0, "L", true, 0, "")
	pdf.CellFormat(msgW, 7, "Message", "1", 1, "L", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return y + 7
}

// findingText is the message followed by the expected/actual context.
func findingText(f domain.Finding) string {
	lines := []string{f.Message}
	if exp, ok := f.Context["expected"]; ok {
		lines = append(lines, "Expected: "+exp, "Actual: "+f.Context["actual"])
	}
	return strings.Join(lines, "\n")
}

// wrap splits text on newlines and then to width w.
func wrap(pdf *fpdf.Fpdf, text string, w float64) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		for _, l := range pdf.SplitLines([]byte(para), w) {
			out = append(out, string(l))
		}
	}
	return out
}

func drawFindings(pdf *fpdf.Fpdf, tr func(string) string, fs []domain.Finding, y float64) {
	marginL, marginT, _, marginB := pdf.GetMargins()
	_, pageH := pdf.GetPageSize()
	contentW := contentWidth(pdf)
	sevW := contentW * 0.12
	checkW := contentW * 0.30
	msgW := contentW - sevW - checkW
	bottom := pageH - marginB

	y = drawTableHeader(pdf, y, sevW, checkW, msgW)
	for i, f := range fs {
		pdf.SetFont("Helvetica", "", 8.5)
		msg := wrap(pdf, tr(findingText(f)), msgW-2)
		check := wrap(pdf, tr(f.Check), checkW-2)
		n := max(len(msg), len(check), 1)
		rowH := float64(n)*lineH + 2

		if y+rowH > bottom {
			pdf.AddPage()
			y = drawTableHeader(pdf, marginT+headerH+3, sevW, checkW, msgW)
			pdf.SetFont("Helvetica", "", 8.5)
		}

		if i%2 == 0 {
			pdf.SetFillColor(250, 250, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.Rect(marginL, y, contentW, rowH, "FD")
		pdf.Line(marginL+sevW, y, marginL+sevW, y+rowH)
		pdf.Line(marginL+sevW+checkW, y, marginL+sevW+checkW, y+rowH)

		c := severityColors[f.Severity]
		pdf.SetTextColor(c.r, c.g, c.b)
		pdf.SetFont("Helvetica", "B", 8.5)
		pdf.SetXY(marginL, y+1)
		pdf.CellFormat(sevW, lineH, string(f.Severity), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)

		pdf.SetFont("Helvetica", "", 8.5)
		for j, l := range check {
			pdf.SetXY(marginL+sevW+1, y+1+float64(j)*lineH)
			pdf.CellFormat(checkW-2, lineH, l, "", 0, "L", false, 0, "")
		}
		for j, l := range msg {
			pdf.SetXY(marginL+sevW+checkW+1, y+1+float64(j)*lineH)
			pdf.CellFormat(msgW-2, lineH, l, "", 0, "L", false, 0, "")
		}
		y += rowH
	}
}
