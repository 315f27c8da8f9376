package reconcile_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/csg33k/payslip-verify/internal/domain"
	"github.com/csg33k/payslip-verify/internal/payslip"
	"github.com/csg33k/payslip-verify/internal/reconcile"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

type line struct{ label, total, subtotal, rate string }

func (l line) row() domain.Row {
	cells := map[string]string{payslip.ColTotal: l.total, payslip.ColSubtotal: l.subtotal}
	if l.rate != "" {
		cells[payslip.ColRate] = l.rate
	}
	return domain.Row{Label: l.label, Cells: cells}
}

// januaryLines is a consistent 2022 payslip: CHF 10'000 monthly wage, taxed
// at source in Zurich as B2N.
func januaryLines() []line {
	return []line{
		{label: "Monthly wage", total: "10'000.00"},
		{label: "Gross salary", total: "10'000.00"},
		{label: "OASI contribution", total: "-530.00", rate: "5.30%"},
		{label: "UI contribution", total: "-110.00", rate: "1.10%"},
		{label: "SUVA contribution", total: "-20.00"},
		{label: "DSA contribution", total: "-35.00"},
		{label: "PF/LOB contrib. fixed men", total: "-500.00"},
		{label: "Withholding tax deduction", total: "-1'234.00"},
		{label: "January 2022 / 30 SI-Days / ZH / B2N", subtotal: "10'000.00"},
		{label: "Net salary", total: "7'571.00"},
		{label: "Wage paid", total: "7'571.00"},
	}
}

// stockLines is a matching stock award statement for the same month.
func stockLines() []line {
	return []line{
		{label: "Stock Award", total: "10'000.00"},
		{label: "Gross salary", total: "10'000.00"},
		{label: "OASI contribution", total: "-530.00"},
		{label: "UI contribution", total: "-25.85"},
		{label: "SUI contribution", total: "-38.25"},
		{label: "Net salary", total: "9'405.90"},
		{label: "Already settled social security", total: "623.00"},
	}
}

func set(lines []line, label, total string) []line {
	for i := range lines {
		if lines[i].label == label {
			lines[i].total = total
			return lines
		}
	}
	panic("no line " + label)
}

func rename(lines []line, from, to string) []line {
	for i := range lines {
		if lines[i].label == from {
			lines[i].label = to
			return lines
		}
	}
	panic("no line " + from)
}

func insertBefore(lines []line, label string, l line) []line {
	for i := range lines {
		if lines[i].label == label {
			out := append([]line{}, lines[:i]...)
			out = append(out, l)
			return append(out, lines[i:]...)
		}
	}
	panic("no line " + label)
}

func slip(t *testing.T, name, date string, role payslip.Role, lines []line) *payslip.Payslip {
	t.Helper()
	rows := make([]domain.Row, len(lines))
	for i, l := range lines {
		rows[i] = l.row()
	}
	p, err := payslip.New(&domain.Document{Name: name, Text: "Payslip\nDate " + date, Rows: rows}, role)
	if err != nil {
		t.Fatalf("payslip.New(%s): %v", name, err)
	}
	return p
}

func employee() domain.EmployeeFacts {
	return domain.EmployeeFacts{
		BirthYear:           1987,
		WithholdingTax:      true,
		AnnualBaseSalary:    decp("120000"),
		PensionContribution: decp("500"),
	}
}

type taxCall struct {
	year         int
	canton, code string
	income       decimal.Decimal
	allow        bool
}

type fakeTax struct {
	amount decimal.Decimal
	err    error
	calls  []taxCall
}

func (f *fakeTax) Calculate(_ context.Context, year int, canton, code string, income decimal.Decimal, allow bool) (decimal.Decimal, error) {
	f.calls = append(f.calls, taxCall{year, canton, code, income, allow})
	return f.amount, f.err
}

func run(t *testing.T, emp domain.EmployeeFacts, tax *fakeTax, primary *payslip.Payslip, supplements ...*payslip.Payslip) *domain.Report {
	t.Helper()
	e, err := reconcile.New(emp, primary, supplements, tax)
	if err != nil {
		t.Fatalf("reconcile.New: %v", err)
	}
	rep, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return rep
}

func has(rep *domain.Report, sev domain.Severity, check, msg string) bool {
	for _, f := range rep.ByCheck(check) {
		if f.Severity == sev && strings.Contains(f.Message, msg) {
			return true
		}
	}
	return false
}

func dump(t *testing.T, rep *domain.Report) {
	t.Helper()
	for _, f := range rep.Findings {
		t.Logf("%s %s: %s %v", f.Severity, f.Check, f.Message, f.Context)
	}
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

func TestNew_DateMismatch(t *testing.T) {
	primary := slip(t, "jan.pdf", "25.01.2022", payslip.Primary, januaryLines())
	stock := slip(t, "stock.pdf", "24.01.2022", payslip.Supplementary, stockLines())
	_, err := reconcile.New(employee(), primary, []*payslip.Payslip{stock}, &fakeTax{})
	if !errors.Is(err, domain.ErrDateMismatch) {
		t.Fatalf("want ErrDateMismatch, got %v", err)
	}
}

func TestNew_RolesEnforced(t *testing.T) {
	primary := slip(t, "jan.pdf", "25.01.2022", payslip.Primary, januaryLines())
	stock := slip(t, "stock.pdf", "25.01.2022", payslip.Supplementary, stockLines())
	if _, err := reconcile.New(employee(), stock, nil, &fakeTax{}); !errors.Is(err, domain.ErrWrongRole) {
		t.Errorf("supplement as primary: got %v", err)
	}
	if _, err := reconcile.New(employee(), primary, []*payslip.Payslip{primary}, &fakeTax{}); !errors.Is(err, domain.ErrWrongRole) {
		t.Errorf("primary as supplement: got %v", err)
	}
}

func TestNew_UnsupportedYear(t *testing.T) {
	primary := slip(t, "jan.pdf", "25.01.2019", payslip.Primary, januaryLines())
	if _, err := reconcile.New(employee(), primary, nil, &fakeTax{}); !errors.Is(err, domain.ErrUnsupportedYear) {
		t.Fatalf("want ErrUnsupportedYear, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

func TestRun_ConsistentPayslipHasNoFailures(t *testing.T) {
	tax := &fakeTax{amount: dec("1234")}
	rep := run(t, employee(), tax, slip(t, "jan.pdf", "25.01.2022", payslip.Primary, januaryLines()))
	if rep.Failed() || rep.Count(domain.SeverityWarn) != 0 {
		dump(t, rep)
		t.Fatalf("fails=%d warns=%d, want none", rep.Count(domain.SeverityFail), rep.Count(domain.SeverityWarn))
	}
	for _, check := range []string{
		reconcile.CheckBaseSalary,
		reconcile.CheckGrossSalary + " [jan.pdf]",
		reconcile.CheckNetSalary + " [jan.pdf]",
		reconcile.CheckOASI,
		reconcile.CheckUI,
		reconcile.CheckSUI,
		reconcile.CheckPension,
		reconcile.CheckWithholdingTax,
	} {
		if !has(rep, domain.SeverityPass, check, "") {
			t.Errorf("no PASS for %q", check)
		}
	}
	if !has(rep, domain.SeverityNote, reconcile.CheckWithholdingTax, "Married Single-Earner, Children: 2, Church Tax: No") {
		t.Error("tax class explanation missing")
	}
	if !has(rep, domain.SeverityNote, reconcile.CheckSUVA, "") || !has(rep, domain.SeverityNote, reconcile.CheckDSA, "") {
		t.Error("SUVA/DSA notes missing")
	}
	if len(rep.ByCheck(reconcile.CheckWagePaid)) != 2 {
		t.Error("wage paid notes missing")
	}
	if len(tax.calls) != 1 {
		t.Fatalf("calculator calls=%d want=1", len(tax.calls))
	}
	c := tax.calls[0]
	if c.year != 2022 || c.canton != "ZH" || c.code != "B2N" || !c.income.Equal(dec("10000")) || !c.allow {
		t.Errorf("calculator called with %+v", c)
	}
	if rep.Primary.Name != "jan.pdf" || rep.EffectiveDate.Year() != 2022 {
		t.Errorf("report header %+v", rep.Primary)
	}
}

func TestRun_FindingsKeepCheckOrder(t *testing.T) {
	rep := run(t, employee(), &fakeTax{amount: dec("1234")}, slip(t, "jan.pdf", "25.01.2022", payslip.Primary, januaryLines()))
	order := []string{reconcile.CheckBaseSalary, reconcile.CheckOASI, reconcile.CheckPension, reconcile.CheckWithholdingTax, reconcile.CheckWagePaid}
	pos := 0
	for _, f := range rep.Findings {
		if pos < len(order) && f.Check == order[pos] {
			pos++
		}
	}
	if pos != len(order) {
		dump(t, rep)
		t.Fatalf("checks out of order, matched %d of %d", pos, len(order))
	}
}

func TestRun_WithSupplement(t *testing.T) {
	tax := &fakeTax{amount: dec("1234")}
	rep := run(t, employee(), tax,
		slip(t, "jan.pdf", "25.01.2022", payslip.Primary, januaryLines()),
		slip(t, "stock.pdf", "25.01.2022", payslip.Supplementary, stockLines()),
	)
	if rep.Failed() {
		dump(t, rep)
		t.Fatal("unexpected FAIL")
	}
	if !has(rep, domain.SeverityPass, reconcile.CheckStockWithholding, "") {
		t.Error("stock withholding not checked")
	}
	if !has(rep, domain.SeverityNote, reconcile.CheckGrossComponents, "10000.00 paid outside the payroll") {
		t.Error("non-cash note missing")
	}
	if !tax.calls[0].income.Equal(dec("20000")) {
		t.Errorf("tax income got=%s want=20000 (total gross)", tax.calls[0].income)
	}
	if len(rep.Supplements) != 1 || rep.Supplements[0].Name != "stock.pdf" {
		t.Errorf("supplements %+v", rep.Supplements)
	}
}

func TestRun_StockWithholdingTolerance(t *testing.T) {
	primary := slip(t, "jan.pdf", "25.01.2022", payslip.Primary, januaryLines())
	within := slip(t, "s.pdf", "25.01.2022", payslip.Supplementary, set(stockLines(), "Already settled social security", "622.10"))
	rep := run(t, employee(), &fakeTax{amount: dec("1234")}, primary, within)
	if !has(rep, domain.SeverityPass, reconcile.CheckStockWithholding, "") {
		t.Error("0.90 off should pass")
	}
	outside := slip(t, "s.pdf", "25.01.2022", payslip.Supplementary, set(stockLines(), "Already settled social security", "621.95"))
	rep = run(t, employee(), &fakeTax{amount: dec("1234")}, primary, outside)
	if !has(rep, domain.SeverityFail, reconcile.CheckStockWithholding, "") {
		t.Error("1.05 off should fail")
	}
}

func TestRun_SupplementOrderDoesNotMatter(t *testing.T) {
	primary := slip(t, "jan.pdf", "25.01.2022", payslip.Primary, januaryLines())
	stock := slip(t, "stock.pdf", "25.01.2022", payslip.Supplementary, stockLines())
	espp := slip(t, "espp.pdf", "25.01.2022", payslip.Supplementary, []line{
		{label: "ESPP gain", total: "1'234.55"},
		{label: "Child and education allowances", total: "200.00"},
		{label: "Gross salary", total: "1'434.55"},
		{label: "Net salary", total: "1'434.55"},
	})
	a, err := reconcile.SumGross(primary, stock, espp)
	if err != nil {
		t.Fatal(err)
	}
	b, err := reconcile.SumGross(espp, primary, stock)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Gross.Equal(b.Gross) || !a.SIBase.Equal(b.SIBase) || !a.NonCash.Equal(b.NonCash) {
		t.Fatalf("order changed totals: %+v vs %+v", a, b)
	}
	if !a.Gross.Equal(dec("21434.55")) || !a.SIBase.Equal(dec("21234.55")) || !a.NonCash.Equal(dec("11234.55")) {
		t.Errorf("totals %+v", a)
	}

	r1 := run(t, employee(), &fakeTax{amount: dec("1234")}, primary, stock, espp)
	r2 := run(t, employee(), &fakeTax{amount: dec("1234")}, primary, espp, stock)
	for _, check := range []string{reconcile.CheckOASI, reconcile.CheckUI, reconcile.CheckSUI} {
		f1, f2 := r1.ByCheck(check), r2.ByCheck(check)
		if len(f1) != 1 || len(f2) != 1 || f1[0].Severity != f2[0].Severity || f1[0].Context["expected"] != f2[0].Context["expected"] {
			t.Errorf("%s differs by supplement order: %+v vs %+v", check, f1, f2)
		}
	}
}

func TestRun_GrossMismatchFails(t *testing.T) {
	lines := set(januaryLines(), "Gross salary", "10'000.05")
	rep := run(t, employee(), &fakeTax{amount: dec("1234")}, slip(t, "jan.pdf", "25.01.2022", payslip.Primary, lines))
	fs := rep.ByCheck("Stated gross salary calculation [jan.pdf]")
	if len(fs) != 1 || fs[0].Severity != domain.SeverityFail {
		t.Fatalf("got %+v", fs)
	}
	if fs[0].Context["expected"] != "10000.05" || fs[0].Context["actual"] != "10000" {
		t.Errorf("context %v", fs[0].Context)
	}
}

func TestRun_UnknownRowsWarnButCount(t *testing.T) {
	lines := insertBefore(januaryLines(), "Gross salary", line{label: "Relocation", total: "100.00"})
	lines = set(lines, "Gross salary", "10'100.00")
	lines = insertBefore(lines, "Net salary", line{label: "Parking", total: "-100.00"})
	lines = insertBefore(lines, "Net salary", line{label: "Canteen", total: "0.00"})
	rep := run(t, employee(), &fakeTax{amount: dec("1234")}, slip(t, "jan.pdf", "25.01.2022", payslip.Primary, lines))
	if !has(rep, domain.SeverityWarn, reconcile.CheckGrossComponents, `"Relocation"`) {
		t.Error("unknown gross component not flagged")
	}
	if !has(rep, domain.SeverityWarn, reconcile.CheckDeductions, `"Parking"`) {
		t.Error("unknown deduction not flagged")
	}
	if has(rep, domain.SeverityWarn, reconcile.CheckDeductions, `"Canteen"`) {
		t.Error("zero deduction flagged")
	}
	if !has(rep, domain.SeverityPass, reconcile.CheckGrossSalary+" [jan.pdf]", "") {
		t.Error("unknown row was not summed into gross")
	}
	if !has(rep, domain.SeverityPass, reconcile.CheckNetSalary+" [jan.pdf]", "") {
		t.Error("unknown deduction was not summed into net")
	}
}

func TestRun_NoWithholdingLiability(t *testing.T) {
	emp := employee()
	emp.WithholdingTax = false
	tax := &fakeTax{}
	rep := run(t, emp, tax, slip(t, "jan.pdf", "25.01.2022", payslip.Primary, januaryLines()))
	if !has(rep, domain.SeverityFail, reconcile.CheckWithholdingTax, "Withholding tax found in payslip with no expected withholding tax.") {
		dump(t, rep)
		t.Fatal("missing FAIL")
	}
	if len(tax.calls) != 0 {
		t.Error("calculator must not be consulted")
	}
}

func TestRun_PensionBelowBVGMinimum(t *testing.T) {
	emp := employee()
	emp.AnnualBaseSalary = decp("20000")
	rep := run(t, emp, &fakeTax{amount: dec("1234")}, slip(t, "jan.pdf", "25.01.2022", payslip.Primary, januaryLines()))
	if !has(rep, domain.SeverityFail, reconcile.CheckPension, "Pension contribution found in payslip with salary below BVG minimum.") {
		dump(t, rep)
		t.Fatal("missing FAIL")
	}

	lines := set(januaryLines(), "PF/LOB contrib. fixed men", "0.00")
	rep = run(t, emp, &fakeTax{amount: dec("1234")}, slip(t, "jan.pdf", "25.01.2022", payslip.Primary, lines))
	if !has(rep, domain.SeverityWarn, reconcile.CheckPension, "no pension contribution expected") {
		t.Fatal("missing WARN")
	}
}

func TestRun_PensionPlausibility(t *testing.T) {
	// Age 35 in 2022 on CHF 120'000: half the monthly savings contribution is
	// 581.75 at 10% and 872.625 at the next band's 15%.
	emp := employee()
	emp.PensionContribution = nil
	for _, tc := range []struct {
		stated string
		sev    domain.Severity
		msg    string
	}{
		{"-500.00", domain.SeverityFail, "implausibly low"},
		{"-700.00", domain.SeverityPass, "plausible"},
		{"-900.00", domain.SeverityFail, "implausibly high"},
	} {
		t.Run(tc.stated, func(t *testing.T) {
			lines := set(januaryLines(), "PF/LOB contrib. fixed men", tc.stated)
			rep := run(t, emp, &fakeTax{amount: dec("1234")}, slip(t, "jan.pdf", "25.01.2022", payslip.Primary, lines))
			if !has(rep, tc.sev, reconcile.CheckPension, tc.msg) {
				dump(t, rep)
				t.Fatalf("want %s %q", tc.sev, tc.msg)
			}
			if !has(rep, domain.SeverityWarn, reconcile.CheckPension, "No expected pension contribution") {
				t.Error("plausibility warning missing")
			}
		})
	}
}

func TestRun_PensionWomenRowCounts(t *testing.T) {
	lines := rename(januaryLines(), "PF/LOB contrib. fixed men", "PF/LOB contrib. fixed women")
	rep := run(t, employee(), &fakeTax{amount: dec("1234")}, slip(t, "jan.pdf", "25.01.2022", payslip.Primary, lines))
	if !has(rep, domain.SeverityPass, reconcile.CheckPension, "") {
		t.Fatal("pension row for women not summed")
	}
}

func TestRun_WithholdingTaxMismatch(t *testing.T) {
	rep := run(t, employee(), &fakeTax{amount: dec("1200")}, slip(t, "jan.pdf", "25.01.2022", payslip.Primary, januaryLines()))
	fs := rep.ByCheck(reconcile.CheckWithholdingTax)
	last := fs[len(fs)-1]
	if last.Severity != domain.SeverityFail || last.Context["expected"] != "-1200" || last.Context["actual"] != "-1234" {
		t.Fatalf("got %+v", last)
	}
}

func TestRun_WithholdingSubtotalVariants(t *testing.T) {
	const sub = "January 2022 / 30 SI-Days / ZH / B2N"
	for _, tc := range []struct {
		name     string
		label    string
		sev      domain.Severity
		msg      string
		consults bool
	}{
		{"annual model canton", "January 2022 / 30 SI-Days / GE / B2N", domain.SeverityWarn, "annual withholding tax model", true},
		{"partial month", "January 2022 / 12 SI-Days / ZH / B2N", domain.SeverityWarn, "12 SI-Days", true},
		{"unsupported class", "January 2022 / 30 SI-Days / ZH / H1N", domain.SeverityWarn, "Tax class H1N is not supported", false},
		{"unparseable label", "January 2022 - ZH - B2N", domain.SeverityFail, "Unrecognized withholding tax subtotal format", false},
		{"malformed code", "January 2022 / 30 SI-Days / ZH / BXN", domain.SeverityFail, "children must be a digit", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tax := &fakeTax{amount: dec("1234")}
			lines := rename(januaryLines(), sub, tc.label)
			rep := run(t, employee(), tax, slip(t, "jan.pdf", "25.01.2022", payslip.Primary, lines))
			if !has(rep, tc.sev, reconcile.CheckWithholdingTax, tc.msg) {
				dump(t, rep)
				t.Fatalf("want %s %q", tc.sev, tc.msg)
			}
			if got := len(tax.calls) > 0; got != tc.consults {
				t.Errorf("calculator consulted=%v want %v", got, tc.consults)
			}
			if tc.consults && !tax.calls[0].allow {
				t.Error("annual model must be allowed for the payslip check")
			}
		})
	}
}

func TestRun_NoSubtotalBlock(t *testing.T) {
	lines := januaryLines()
	for i := range lines {
		lines[i].subtotal = ""
	}
	rep := run(t, employee(), &fakeTax{amount: dec("1234")}, slip(t, "jan.pdf", "25.01.2022", payslip.Primary, lines))
	if !has(rep, domain.SeverityFail, reconcile.CheckWithholdingTax, "No subtotals found for withholding tax.") {
		t.Fatal("missing FAIL")
	}
}

func TestRun_CalculatorErrorIsFatal(t *testing.T) {
	primary := slip(t, "jan.pdf", "25.01.2022", payslip.Primary, januaryLines())
	e, err := reconcile.New(employee(), primary, nil, &fakeTax{err: domain.ErrNoBracket})
	if err != nil {
		t.Fatal(err)
	}
	rep, err := e.Run(context.Background())
	if !errors.Is(err, domain.ErrNoBracket) || rep != nil {
		t.Fatalf("want ErrNoBracket and no report, got %v / %v", err, rep)
	}
}

func TestRun_SUIAfter2022(t *testing.T) {
	lines := insertBefore(januaryLines(), "Net salary", line{label: "SUI contribution", total: "-5.00"})
	lines = set(lines, "Net salary", "7'566.00")
	lines = rename(lines, "January 2022 / 30 SI-Days / ZH / B2N", "January 2023 / 30 SI-Days / ZH / B2N")
	emp := employee()
	rep := run(t, emp, &fakeTax{amount: dec("1234")}, slip(t, "jan.pdf", "25.01.2023", payslip.Primary, lines))
	if !has(rep, domain.SeverityFail, reconcile.CheckSUI, "SUI entry found in payslip after 2022.") {
		dump(t, rep)
		t.Fatal("missing FAIL")
	}
}

func TestRun_SUVAAbsent(t *testing.T) {
	lines := set(januaryLines(), "SUVA contribution", "0.00")
	lines = set(lines, "Net salary", "7'591.00")
	rep := run(t, employee(), &fakeTax{amount: dec("1234")}, slip(t, "jan.pdf", "25.01.2022", payslip.Primary, lines))
	if !has(rep, domain.SeverityFail, reconcile.CheckSUVA, "SUVA contribution not found in payslip.") {
		t.Fatal("missing FAIL")
	}
}

func TestRun_BalanceForward(t *testing.T) {
	lines := append(januaryLines(), line{label: "Balance forward", total: "250.00"})
	rep := run(t, employee(), &fakeTax{amount: dec("1234")}, slip(t, "jan.pdf", "25.01.2022", payslip.Primary, lines))
	if !has(rep, domain.SeverityFail, reconcile.CheckBalanceForward, "not zero: 250.00") {
		t.Error("aggregate FAIL missing")
	}
	if !has(rep, domain.SeverityFail, reconcile.CheckBalanceForward, "no associated supplementary payslip") ||
		!has(rep, domain.SeverityWarn, reconcile.CheckBalanceForward, "missing supplementary payslips") {
		dump(t, rep)
		t.Error("missing supplement not flagged")
	}

	stock := append(stockLines(), line{label: "Balance forward", total: "-250.00"})
	rep = run(t, employee(), &fakeTax{amount: dec("1234")},
		slip(t, "jan.pdf", "25.01.2022", payslip.Primary, lines),
		slip(t, "stock.pdf", "25.01.2022", payslip.Supplementary, stock))
	if !has(rep, domain.SeverityPass, reconcile.CheckBalanceForward, "") || len(rep.ByCheck(reconcile.CheckBalanceForward)) != 1 {
		dump(t, rep)
		t.Error("balanced forward should pass")
	}
}

func TestRun_BaseSalaryWithoutExpectation(t *testing.T) {
	emp := employee()
	emp.AnnualBaseSalary = nil
	rep := run(t, emp, &fakeTax{amount: dec("1234")}, slip(t, "jan.pdf", "25.01.2022", payslip.Primary, januaryLines()))
	if !has(rep, domain.SeverityWarn, reconcile.CheckBaseSalary, "120000.00") {
		dump(t, rep)
		t.Fatal("annualized salary not reported")
	}
	// stated monthly x12 feeds the pension check
	if !has(rep, domain.SeverityPass, reconcile.CheckPension, "") {
		t.Error("pension check should use the annualized salary")
	}
}

func TestRun_ESPP(t *testing.T) {
	base := insertBefore(januaryLines(), "Gross salary", line{label: "Bonus", total: "2'000.00"})
	base = set(base, "Gross salary", "12'000.00")
	for _, tc := range []struct {
		name   string
		stated string
		rate   string
		sev    domain.Severity
		msg    string
	}{
		{"matches", "-1'200.00", "10.00%", domain.SeverityPass, ""},
		{"mismatch", "-1'000.00", "10.00%", domain.SeverityFail, ""},
		{"unreadable rate", "-1'200.00", "see plan", domain.SeverityFail, "ESPP rate unreadable"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			lines := insertBefore(append([]line{}, base...), "Net salary", line{label: "ESPP", total: tc.stated, rate: tc.rate})
			rep := run(t, employee(), &fakeTax{amount: dec("1234")}, slip(t, "jan.pdf", "25.01.2022", payslip.Primary, lines))
			if !has(rep, tc.sev, reconcile.CheckESPP, tc.msg) {
				dump(t, rep)
				t.Fatalf("want %s", tc.sev)
			}
		})
	}
}
