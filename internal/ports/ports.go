package ports

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"github.com/csg33k/payslip-verify/internal/domain"
)

// TableExtractor turns one payslip file into a line-item table plus the free
// text its effective date is read from.
type TableExtractor interface {
	Extract(ctx context.Context, path string) (*domain.Document, error)
}

// WithholdingTaxCalculator computes the monthly withholding tax (Quellensteuer)
// for an income from the published cantonal tariffs.
type WithholdingTaxCalculator interface {
	// Calculate fails with domain.ErrAnnualModel for annual-model cantons
	// unless allowAnnualModel is set, and with domain.ErrNoBracket when the
	// tariff has no bracket for income.
	Calculate(ctx context.Context, year int, canton, taxClassCode string, income decimal.Decimal, allowAnnualModel bool) (decimal.Decimal, error)
}

// ReportRenderer writes a finished report in one output format.
type ReportRenderer interface {
	Render(ctx context.Context, r *domain.Report, w io.Writer) error
}

// TariffFetcher downloads and unpacks the ESTV tariff archives.
type TariffFetcher interface {
	// Fetch writes every tariff file of year into dir.
	Fetch(ctx context.Context, year int, dir string) error

	// SupportedYears returns the years with a known archive URL, ascending.
	SupportedYears() []domain.TaxYearInfo
}
