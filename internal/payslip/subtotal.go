package payslip

import (
	"errors"
	"fmt"
	"strings"
)

// FullMonthSIDays is the SI-days token of a regular full month.
const FullMonthSIDays = "30 SI-Days"

var ErrSubtotalFormat = errors.New("unrecognized withholding tax subtotal format")

// TaxSubtotal is the breakdown line printed under the withholding tax row.
type TaxSubtotal struct {
	Period string // "January 2022"
	SIDays string // "30 SI-Days"
	Canton string
	Code   string
}

// ParseTaxSubtotal parses "<Month Year> / <N> SI-Days / <Canton> / <Code>",
// e.g. "January 2022 / 30 SI-Days / ZH / A0N".
func ParseTaxSubtotal(label string) (TaxSubtotal, error) {
	parts := strings.Split(label, "/")
	if len(parts) != 4 {
		return TaxSubtotal{}, fmt.Errorf("%q: %w", label, ErrSubtotalFormat)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	s := TaxSubtotal{Period: parts[0], SIDays: parts[1], Canton: parts[2], Code: parts[3]}
	if !strings.HasSuffix(s.SIDays, "SI-Days") || s.Canton == "" || s.Code == "" {
		return TaxSubtotal{}, fmt.Errorf("%q: %w", label, ErrSubtotalFormat)
	}
	return s, nil
}

// FullMonth reports whether the subtotal covers 30 SI-days.
func (s TaxSubtotal) FullMonth() bool { return s.SIDays == FullMonthSIDays }
