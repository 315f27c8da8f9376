// Package reconcile recomputes the figures of a primary payslip and its
// supplements and reports every discrepancy it finds in one pass.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/csg33k/payslip-verify/internal/adapters/qst"
	"github.com/csg33k/payslip-verify/internal/domain"
	"github.com/csg33k/payslip-verify/internal/money"
	"github.com/csg33k/payslip-verify/internal/payslip"
	"github.com/csg33k/payslip-verify/internal/ports"
	"github.com/csg33k/payslip-verify/internal/statutory"
)

// Check names as they appear in findings.
const (
	CheckBalanceForward   = "Balance forward"
	CheckBaseSalary       = "Base salary"
	CheckStockWithholding = "Stock award social security withholding"
	CheckGrossComponents  = "Gross salary components"
	CheckGrossSalary      = "Stated gross salary calculation"
	CheckDeductions       = "Deductions"
	CheckNetSalary        = "Stated net salary calculation"
	CheckOASI             = "AHV/IV/EO contributions"
	CheckUI               = "UI contributions"
	CheckSUI              = "SUI contributions"
	CheckSUVA             = "SUVA contribution"
	CheckDSA              = "DSA contribution"
	CheckPension          = "PF/LOB contrib. fixed"
	CheckWithholdingTax   = "Withholding tax"
	CheckESPP             = "ESPP contribution"
	CheckWagePaid         = "Wage paid"
)

var (
	twelve = decimal.NewFromInt(12)
	two    = decimal.NewFromInt(2)
	cent   = decimal.NewFromInt(100)
	// Withheld shares are rounded to a thousandth of a share; at up to CHF
	// 1000 per share that is worth at most CHF 1.
	stockTolerance = decimal.NewFromInt(1)
)

// Engine reconciles one primary payslip and its supplements.
type Engine struct {
	emp         domain.EmployeeFacts
	primary     *payslip.Payslip
	supplements []*payslip.Payslip
	tax         ports.WithholdingTaxCalculator
	year        *statutory.Year
}

// New checks the preconditions of a run: the documents' roles, matching
// effective dates and statutory figures for the payslip year.
func New(emp domain.EmployeeFacts, primary *payslip.Payslip, supplements []*payslip.Payslip, tax ports.WithholdingTaxCalculator) (*Engine, error) {
	if primary.Role != payslip.Primary {
		return nil, fmt.Errorf("%s is a %v payslip: %w", primary.Name, primary.Role, domain.ErrWrongRole)
	}
	for _, s := range supplements {
		if s.Role != payslip.Supplementary {
			return nil, fmt.Errorf("%s is a %v payslip: %w", s.Name, s.Role, domain.ErrWrongRole)
		}
		if !s.EffectiveDate.Equal(primary.EffectiveDate) {
			return nil, fmt.Errorf("%s dated %s, primary %s dated %s: %w",
				s.Name, s.EffectiveDate.Format("02.01.2006"),
				primary.Name, primary.EffectiveDate.Format("02.01.2006"), domain.ErrDateMismatch)
		}
	}
	y, err := statutory.ForYear(primary.EffectiveDate.Year())
	if err != nil {
		return nil, err
	}
	return &Engine{emp: emp, primary: primary, supplements: supplements, tax: tax, year: y}, nil
}

func (e *Engine) all() []*payslip.Payslip {
	return append([]*payslip.Payslip{e.primary}, e.supplements...)
}

// aggregate sums the Total of label over the primary and every supplement.
func (e *Engine) aggregate(label string) decimal.Decimal {
	values := make([]decimal.Decimal, 0, len(e.supplements)+1)
	for _, p := range e.all() {
		values = append(values, p.Total(label))
	}
	return money.Sum(values...)
}

// Run executes every check in order. It returns an error only for conditions
// that make the whole run meaningless; no partial report is returned then.
func (e *Engine) Run(ctx context.Context) (*domain.Report, error) {
	slog.Debug("reconciling payslips",
		"primary", e.primary.Name, "supplements", len(e.supplements), "year", e.year.Year)

	rep := domain.NewReport()
	rep.EffectiveDate = e.primary.EffectiveDate
	rep.Primary = e.primary.Summary()
	for _, s := range e.supplements {
		rep.Supplements = append(rep.Supplements, s.Summary())
	}

	e.checkBalanceForward(rep)
	monthly := e.checkBaseSalary(rep)
	annual := monthly.Mul(twelve)
	if e.emp.AnnualBaseSalary != nil {
		annual = *e.emp.AnnualBaseSalary
	}
	for _, s := range e.supplements {
		e.checkStockWithholding(rep, s)
	}
	totals := e.checkGrossSalary(rep)
	e.checkNetSalary(rep)
	e.checkOASI(rep, totals.SIBase)
	e.checkUI(rep, totals.SIBase)
	e.checkPresence(rep, CheckSUVA, payslip.RowSUVA)
	e.checkPresence(rep, CheckDSA, payslip.RowDSA)
	e.checkPension(rep, annual)
	if err := e.checkWithholdingTax(ctx, rep, totals.Gross); err != nil {
		return nil, err
	}
	e.checkESPP(rep, monthly)
	e.noteWagePaid(rep)
	return rep, nil
}

func (e *Engine) checkBalanceForward(rep *domain.Report) {
	seen, failed := false, false
	for _, p := range e.all() {
		seen = seen || p.RowExists(payslip.RowBalanceForward)
	}
	if !seen {
		return
	}
	if sum := e.aggregate(payslip.RowBalanceForward); !sum.IsZero() {
		rep.Fail(CheckBalanceForward, fmt.Sprintf("Aggregate sum of balance forward is not zero: %s", sum.StringFixed(2)))
		failed = true
	}
	if !e.primary.Total(payslip.RowBalanceForward).IsZero() {
		matched := false
		for _, s := range e.supplements {
			matched = matched || !s.Total(payslip.RowBalanceForward).IsZero()
		}
		if !matched {
			rep.Fail(CheckBalanceForward, `"Balance forward" row found but no associated supplementary payslip specified.`)
			rep.Warn(CheckBalanceForward, "Subsequent results may be erroneous with potentially missing supplementary payslips.")
			failed = true
		}
	}
	if !failed {
		rep.Pass(CheckBalanceForward)
	}
}

// checkBaseSalary returns the stated monthly wage.
func (e *Engine) checkBaseSalary(rep *domain.Report) decimal.Decimal {
	stated := e.primary.Total(payslip.RowMonthlyWage)
	if e.emp.AnnualBaseSalary == nil {
		rep.Warn(CheckBaseSalary, "Expected base salary not specified as an argument.")
		rep.Warn(CheckBaseSalary, fmt.Sprintf("Verify your annual salary (error up to 0.60): %s", stated.Mul(twelve).StringFixed(2)))
		return stated
	}
	rep.Compare(CheckBaseSalary, stated, money.Round05(e.emp.AnnualBaseSalary.Div(twelve)), decimal.Zero)
	return stated
}

func (e *Engine) checkStockWithholding(rep *domain.Report, s *payslip.Payslip) {
	if !s.RowExists(payslip.RowStockAward) {
		rep.Note(CheckStockWithholding, fmt.Sprintf("No %q row in %s, nothing to check.", payslip.RowStockAward, s.Name))
		return
	}
	stated := s.Total(payslip.RowAlreadySettled)
	expected := e.year.StockWithholding(s.Total(payslip.RowStockAward))
	rep.Compare(CheckStockWithholding, stated, expected, stockTolerance)
}

func (e *Engine) checkGrossSalary(rep *domain.Report) GrossTotals {
	var totals GrossTotals
	for _, p := range e.all() {
		t, unknown, err := grossOf(p)
		if err != nil {
			rep.Fail(CheckGrossSalary, fmt.Sprintf("%s: %v", p.Name, err))
			continue
		}
		for _, l := range unknown {
			rep.Warn(CheckGrossComponents, fmt.Sprintf("Unknown gross salary component in payslip: %q", l))
		}
		rep.Compare(fmt.Sprintf("%s [%s]", CheckGrossSalary, p.Name), t.Gross, p.Total(payslip.RowGrossSalary), decimal.Zero)
		totals = totals.add(t)
	}
	if !totals.NonCash.IsZero() {
		rep.Note(CheckGrossComponents, fmt.Sprintf("Gross salary includes %s paid outside the payroll.", totals.NonCash.StringFixed(2)))
	}
	return totals
}

func (e *Engine) checkNetSalary(rep *domain.Report) {
	for _, p := range e.all() {
		deductions, err := p.SliceRows(payslip.RowGrossSalary, payslip.RowNetSalary, false, false)
		if err != nil {
			rep.Fail(CheckNetSalary, fmt.Sprintf("%s: %v", p.Name, err))
			continue
		}
		for _, l := range deductions.Labels() {
			if !payslip.IsKnownDeduction(l) && p.ValueExists(l, payslip.ColTotal, true) {
				rep.Warn(CheckDeductions, fmt.Sprintf("Unknown deduction in payslip: %q", l))
			}
		}
		expected := p.Total(payslip.RowGrossSalary).Add(deductions.ColumnSum(payslip.ColTotal))
		rep.Compare(fmt.Sprintf("%s [%s]", CheckNetSalary, p.Name), p.Total(payslip.RowNetSalary), expected, decimal.Zero)
	}
}

func (e *Engine) checkOASI(rep *domain.Report, grossSI decimal.Decimal) {
	rep.Compare(CheckOASI, e.aggregate(payslip.RowOASI), e.year.OASIContribution(grossSI).Neg(), decimal.Zero)
}

func (e *Engine) checkUI(rep *domain.Report, grossSI decimal.Decimal) {
	rep.Compare(CheckUI, e.aggregate(payslip.RowUI), e.year.UIContribution(grossSI).Neg(), decimal.Zero)

	stated := e.aggregate(payslip.RowSUI)
	if e.year.Year <= statutory.LastSUIYear {
		rep.Compare(CheckSUI, stated, e.year.SUIContribution(grossSI).Neg(), decimal.Zero)
		return
	}
	if !stated.IsZero() {
		rep.Fail(CheckSUI, fmt.Sprintf("SUI entry found in payslip after %d.", statutory.LastSUIYear))
	}
}

// checkPresence only asserts the deduction is there; the premiums depend on
// insurer contracts that are not public.
func (e *Engine) checkPresence(rep *domain.Report, check, label string) {
	if e.aggregate(label).IsZero() {
		rep.Fail(check, fmt.Sprintf("%s not found in payslip.", label))
		return
	}
	rep.Note(check, fmt.Sprintf("Skipping %s amount validation (premium rates are contract specific).", label))
}

func (e *Engine) checkPension(rep *domain.Report, annual decimal.Decimal) {
	stated := decimal.Zero
	for _, l := range payslip.PensionRows() {
		stated = stated.Add(e.aggregate(l))
	}
	if annual.LessThan(e.year.BVGMinimumSalary) {
		if !stated.IsZero() {
			rep.Fail(CheckPension, "Pension contribution found in payslip with salary below BVG minimum.")
		} else {
			rep.Warn(CheckPension, "Salary below BVG minimum, no pension contribution expected.")
		}
		return
	}
	if pc := e.emp.PensionContribution; pc != nil {
		rep.Compare(CheckPension, stated, pc.Neg(), decimal.Zero)
		return
	}

	// Only the savings share of the plan is statutory. A plausible employee
	// share lies between half the savings contribution of the current age band
	// and half that of the next band.
	rep.Warn(CheckPension, "No expected pension contribution specified. Performing plausibility check.")
	age := e.emp.AgeAtEndOfYear(e.year.Year)
	lower := e.year.BVGMonthlySavingsContribution(age, annual).Div(two).Neg()
	upper := e.year.BVGMonthlySavingsContribution(age+10, annual).Div(two).Neg()
	switch {
	case stated.GreaterThanOrEqual(lower):
		rep.Fail(CheckPension, "Pension contribution is implausibly low. Manually check your pension certificate.")
	case age < 55 && stated.LessThanOrEqual(upper):
		rep.Fail(CheckPension, "Pension contribution is implausibly high. Manually check your pension certificate.")
	default:
		rep.Passf(CheckPension, "Pension contribution is plausible.")
	}
}

func (e *Engine) checkWithholdingTax(ctx context.Context, rep *domain.Report, gross decimal.Decimal) error {
	stated := e.aggregate(payslip.RowWithholdingTax)
	if !e.emp.WithholdingTax {
		if !stated.IsZero() {
			rep.Fail(CheckWithholdingTax, "Withholding tax found in payslip with no expected withholding tax.")
		}
		return nil
	}
	block, ok := e.primary.SubtotalBlock(payslip.RowWithholdingTax)
	if !ok {
		rep.Fail(CheckWithholdingTax, "No subtotals found for withholding tax.")
		return nil
	}
	label := block.Labels()[0]
	sub, err := payslip.ParseTaxSubtotal(label)
	if err != nil {
		rep.Fail(CheckWithholdingTax, fmt.Sprintf("Unrecognized withholding tax subtotal format: %q", label))
		return nil
	}
	if !qst.IsSupported(sub.Code) {
		rep.Warn(CheckWithholdingTax, fmt.Sprintf("Tax class %s is not supported by this tool. Skipping validation.", sub.Code))
		return nil
	}
	explained, err := qst.Explain(sub.Code)
	if err != nil {
		rep.Fail(CheckWithholdingTax, err.Error())
		return nil
	}
	if qst.HasAnnualModel(sub.Canton) {
		rep.Warn(CheckWithholdingTax, fmt.Sprintf("Canton %s has an annual withholding tax model. This check will likely erroneously fail.", sub.Canton))
	}
	if !sub.FullMonth() {
		rep.Warn(CheckWithholdingTax, fmt.Sprintf("Payslip has %s instead of %s. This check will likely erroneously fail.", sub.SIDays, payslip.FullMonthSIDays))
	}

	expected, err := e.tax.Calculate(ctx, e.year.Year, sub.Canton, sub.Code, gross, true)
	if err != nil {
		return fmt.Errorf("withholding tax %s %s: %w", sub.Canton, sub.Code, err)
	}
	rep.Note(CheckWithholdingTax, "Ensure that the following tax class is correct: "+explained)
	rep.Compare(CheckWithholdingTax, stated, expected.Neg(), decimal.Zero)
	return nil
}

func (e *Engine) checkESPP(rep *domain.Report, monthly decimal.Decimal) {
	if !e.primary.RowExists(payslip.RowESPP) {
		return
	}
	stated := e.primary.Total(payslip.RowESPP)
	rate, err := e.primary.Lookup(payslip.RowESPP, payslip.ColRate)
	if err != nil {
		rep.Fail(CheckESPP, fmt.Sprintf("ESPP rate unreadable: %v", err))
		return
	}
	base := monthly.Add(e.primary.Total(payslip.RowBonus))
	expected := money.Round05(base.Mul(rate.Div(cent))).Neg()
	rep.Compare(CheckESPP, stated, expected, decimal.Zero)
}

func (e *Engine) noteWagePaid(rep *domain.Report) {
	rep.Note(CheckWagePaid, `Validation of "Wage paid" is not implemented as it requires recomputation of the payslip.`)
	rep.Note(CheckWagePaid, `Any other reported errors will likely affect the correctness of "Wage paid".`)
}
