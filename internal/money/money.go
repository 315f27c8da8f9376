// Package money holds the decimal helpers shared by the tariff calculator and
// the payslip checks. Nothing here ever goes through float64.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	fiveCentimes = decimal.RequireFromString("0.05")
	half         = decimal.RequireFromString("0.5")
	// roundBias pushes exact .x25/.x75 midpoints up. An amount that still lands
	// on a midpoint after the bias (.x249, .x749) also goes up.
	roundBias = decimal.RequireFromString("0.0001")
)

// Round05 rounds to the nearest 0.05 (5 Rappen). Midpoints resolve toward
// positive infinity.
func Round05(d decimal.Decimal) decimal.Decimal {
	steps := d.Add(roundBias).Div(fiveCentimes).Add(half).Floor()
	return steps.Mul(fiveCentimes)
}

// Parse converts payslip cell text into a decimal. Thousands separators
// (' and ’), percent signs and surrounding blanks are stripped; an empty cell is zero.
func Parse(s string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("'", "", "\u2019", "", "%", "", " ", "", "\u00a0", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

// Scaled converts an implied-decimal integer field ("000650100") into a
// decimal by dividing by 10^exp.
func Scaled(s string, exp int32) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse scaled field %q: %w", s, err)
	}
	return d.Shift(-exp), nil
}

// Sum adds decimals in order.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
