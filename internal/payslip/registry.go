package payslip

// Row labels the checks read.
const (
	RowMonthlyWage     = "Monthly wage"
	RowBonus           = "Bonus"
	RowStockAward      = "Stock Award"
	RowGrossSalary     = "Gross salary"
	RowNetSalary       = "Net salary"
	RowBalanceForward  = "Balance forward"
	RowAlreadySettled  = "Already settled social security"
	RowESPP            = "ESPP"
	RowOASI            = "OASI contribution"
	RowUI              = "UI contribution"
	RowSUI             = "SUI contribution"
	RowSUVA            = "SUVA contribution"
	RowDSA             = "DSA contribution"
	RowWithholdingTax  = "Withholding tax deduction"
	RowPensionMen      = "PF/LOB contrib. fixed men"
	RowPensionWomen    = "PF/LOB contrib. fixed women"
	RowChildAllowances = "Child and education allowances"
)

// Component classifies a gross salary row.
type Component struct {
	// SIExempt rows are not part of the social insurance salary.
	SIExempt bool
	// ExternalPayment rows are paid outside the payroll (non-cash).
	ExternalPayment bool
}

var grossComponents = map[string]Component{
	RowMonthlyWage:               {},
	"Benefits stipend":           {},
	"Communication stipend":      {}, // until end of 2022
	"Wellness stipend":           {}, // until end of 2022
	"Full Benefit Reimbursement": {}, // from 2023
	"ESPP gain":                  {ExternalPayment: true},
	RowStockAward:                {ExternalPayment: true},
	RowBonus:                     {},
	"Commission":                 {},
	RowChildAllowances:           {SIExempt: true},
}

var (
	socialDeductions  = []string{RowOASI, RowUI, RowSUI, RowSUVA, RowDSA}
	pensionDeductions = []string{RowPensionMen, RowPensionWomen}
	knownDeductions   = func() map[string]bool {
		m := map[string]bool{RowWithholdingTax: true}
		for _, n := range socialDeductions {
			m[n] = true
		}
		for _, n := range pensionDeductions {
			m[n] = true
		}
		return m
	}()
)

// GrossComponent looks up a gross salary row. ok is false for unknown rows.
func GrossComponent(label string) (Component, bool) {
	c, ok := grossComponents[label]
	return c, ok
}

func IsKnownDeduction(label string) bool { return knownDeductions[label] }

// PensionRows returns the BVG deduction row labels.
func PensionRows() []string { return append([]string(nil), pensionDeductions...) }

// isExternalPayment reports whether a row is paid outside the payroll.
func isExternalPayment(label string) bool {
	return grossComponents[label].ExternalPayment
}
