// Package statutory holds the year-indexed Swiss social insurance figures used
// to recompute payslip deductions. Sources: AHV/IV/EO and BVG federal
// ordinances, ALV contribution ceilings, and the employer's published stock
// award withholding rates.
package statutory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/csg33k/payslip-verify/internal/domain"
	"github.com/csg33k/payslip-verify/internal/money"
)

// Year carries every statutory figure that varies per contribution year.
// All rates are employee shares unless noted.
type Year struct {
	Year int
	// OASIRate is the AHV/IV/EO employee rate; the employer pays the same again.
	OASIRate decimal.Decimal
	// BVGMinimumSalary is the annual entry threshold for mandatory BVG.
	BVGMinimumSalary decimal.Decimal
	// CoordinationDeduction (Koordinationsabzug) is subtracted before insuring salary.
	CoordinationDeduction decimal.Decimal
	// MaxInsuredSalary caps the annual UI (ALV) insured salary.
	MaxInsuredSalary decimal.Decimal
	UIRate           decimal.Decimal
	// SUIRate is the solidarity surcharge above the UI ceiling. Zero once retired.
	SUIRate decimal.Decimal
	// StockWithholdingRate is the social security share withheld from stock awards.
	StockWithholdingRate decimal.Decimal
}

const (
	// LastSUIYear is the last year the ALV solidarity surcharge was levied.
	LastSUIYear = 2022
	// bvgUpperSalaryLimit caps band 2 of the insured salary.
	bvgUpperSalaryLimit = 300000
)

func Supported() []int { return []int{2020, 2021, 2022, 2023} }

// ForYear returns the figures for year, or ErrUnsupportedYear.
func ForYear(year int) (*Year, error) {
	y, ok := years[year]
	if !ok {
		return nil, fmt.Errorf("statutory tables for %d, have %v: %w", year, Supported(), domain.ErrUnsupportedYear)
	}
	return y, nil
}

var years = map[int]*Year{
	2020: y2020(),
	2021: y2021(),
	2022: y2022(),
	2023: y2023(),
}

func y2020() *Year {
	y := baseYear(2020)
	y.OASIRate = dec("0.05275")
	y.BVGMinimumSalary = dec("21330")
	y.CoordinationDeduction = dec("24885")
	// unconfirmed, assumed equal to 2022
	y.StockWithholdingRate = dec("0.0623")
	return y
}

func y2021() *Year {
	y := baseYear(2021)
	y.BVGMinimumSalary = dec("21510")
	y.CoordinationDeduction = dec("25095")
	// unconfirmed, assumed equal to 2022
	y.StockWithholdingRate = dec("0.0623")
	return y
}

func y2022() *Year {
	y := baseYear(2022)
	y.BVGMinimumSalary = dec("21510")
	y.CoordinationDeduction = dec("25095")
	y.StockWithholdingRate = dec("0.0623")
	return y
}

func y2023() *Year {
	y := baseYear(2023)
	y.BVGMinimumSalary = dec("22050")
	y.CoordinationDeduction = dec("25725")
	y.SUIRate = decimal.Zero
	y.StockWithholdingRate = dec("0.0630")
	return y
}

// baseYear returns the figures shared across 2020–2023.
func baseYear(year int) *Year {
	return &Year{
		Year:             year,
		OASIRate:         dec("0.053"),
		MaxInsuredSalary: dec("148200"),
		UIRate:           dec("0.011"),
		SUIRate:          dec("0.005"),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var twelve = decimal.NewFromInt(12)

// OASIContribution is the monthly AHV/IV/EO employee contribution on the
// social-insurance gross salary.
func (y *Year) OASIContribution(grossSI decimal.Decimal) decimal.Decimal {
	return money.Round05(grossSI.Mul(y.OASIRate))
}

func (y *Year) MaxMonthlyInsuredSalary() decimal.Decimal {
	return y.MaxInsuredSalary.Div(twelve)
}

// UIContribution is the monthly ALV contribution; salary above the monthly
// ceiling is not insured.
func (y *Year) UIContribution(grossSI decimal.Decimal) decimal.Decimal {
	insured := decimal.Min(grossSI, y.MaxMonthlyInsuredSalary())
	return money.Round05(insured.Mul(y.UIRate))
}

// SUIContribution is the monthly solidarity surcharge on the salary share above
// the UI ceiling. Zero at or below the ceiling and after LastSUIYear.
func (y *Year) SUIContribution(grossSI decimal.Decimal) decimal.Decimal {
	ceiling := y.MaxMonthlyInsuredSalary()
	if grossSI.LessThanOrEqual(ceiling) || y.Year > LastSUIYear {
		return decimal.Zero
	}
	return money.Round05(grossSI.Sub(ceiling).Mul(y.SUIRate))
}

// BVGRate is the combined (employee + employer) savings rate for an age at the
// end of the year.
func BVGRate(ageAtEndOfYear int) decimal.Decimal {
	switch {
	case ageAtEndOfYear < 25:
		return decimal.Zero
	case ageAtEndOfYear < 35:
		return dec("0.07")
	case ageAtEndOfYear < 45:
		return dec("0.10")
	case ageAtEndOfYear < 55:
		return dec("0.15")
	default:
		return dec("0.18")
	}
}

// InsuredSalaryBands returns band 1 (salary minus coordination deduction) and
// band 2 (capped salary minus three coordination deductions, only from age 35).
// Band 2 may be negative; callers clamp.
func (y *Year) InsuredSalaryBands(ageAtEndOfYear int, annualSalary decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	band1 := annualSalary.Sub(y.CoordinationDeduction)
	band2 := decimal.Zero
	if ageAtEndOfYear >= 35 {
		capped := decimal.Min(annualSalary, decimal.NewFromInt(bvgUpperSalaryLimit))
		band2 = capped.Sub(y.CoordinationDeduction.Mul(decimal.NewFromInt(3)))
	}
	return band1, band2
}

// BVGSavingsContribution is the annual combined savings contribution. Zero below
// the BVG entry threshold.
func (y *Year) BVGSavingsContribution(ageAtEndOfYear int, annualSalary decimal.Decimal) decimal.Decimal {
	if annualSalary.LessThan(y.BVGMinimumSalary) {
		return decimal.Zero
	}
	band1, band2 := y.InsuredSalaryBands(ageAtEndOfYear, annualSalary)
	if band2.IsNegative() {
		band2 = decimal.Zero
	}
	return money.Round05(band1.Add(band2).Mul(BVGRate(ageAtEndOfYear)))
}

// BVGMonthlySavingsContribution is BVGSavingsContribution spread over twelve months.
func (y *Year) BVGMonthlySavingsContribution(ageAtEndOfYear int, annualSalary decimal.Decimal) decimal.Decimal {
	return money.Round05(y.BVGSavingsContribution(ageAtEndOfYear, annualSalary).Div(twelve))
}

// StockWithholding is the expected social security withholding on a stock award.
func (y *Year) StockWithholding(award decimal.Decimal) decimal.Decimal {
	return money.Round05(award.Mul(y.StockWithholdingRate))
}
