package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmployeeFacts are the facts about the employee that the payslip itself
// does not carry. Supplied once per run.
type EmployeeFacts struct {
	BirthYear int
	// WithholdingTax is true when the employee is taxed at source (Quellensteuerpflichtig).
	WithholdingTax bool
	// AnnualBaseSalary is the contractual annual base salary in CHF, if known.
	AnnualBaseSalary *decimal.Decimal
	// PensionContribution is the monthly BVG employee contribution from the
	// certificate of insurance (Vorsorgeausweis), if known. Positive amount.
	PensionContribution *decimal.Decimal
}

// AgeAtEndOfYear returns the employee age at the end of the given year.
func (e EmployeeFacts) AgeAtEndOfYear(year int) int {
	return year - e.BirthYear
}

// Row is one line item of an extracted payslip table. Cells are keyed by
// column name ("Total", "Rate", "Sub-total", ...) and hold the raw text.
type Row struct {
	Label string            `json:"label"`
	Cells map[string]string `json:"cells"`
}

// Document is what a table extractor produces for one payslip file.
type Document struct {
	// Name identifies the document in findings, usually the file base name.
	Name string `json:"name"`
	// Text is free text recovered from the first page; the effective date is parsed from it.
	Text string `json:"text"`
	Rows []Row  `json:"rows"`
}

// TaxYearInfo carries a year with tariff or statutory support and where the
// tariff archive for it is published.
type TaxYearInfo struct {
	Year       int
	ArchiveURL string
}

// DocumentSummary identifies one payslip in a report.
type DocumentSummary struct {
	Name          string    `json:"name"`
	EffectiveDate time.Time `json:"effectiveDate"`
}
