package domain

import "errors"

// Fatal conditions. Any of these aborts a run before a report is produced.
var (
	ErrUnsupportedYear = errors.New("unsupported year")
	ErrAnnualModel     = errors.New("annual withholding tax models are not supported")
	ErrNoBracket       = errors.New("no tariff bracket matches income")
	ErrTariffNotFound  = errors.New("tariff file not found")
	ErrCantonMismatch  = errors.New("tariff file canton mismatch")
	ErrRowNotFound     = errors.New("row not found")
	ErrColumnNotFound  = errors.New("column not found")
	ErrWrongRole       = errors.New("payslip does not fit its role")
	ErrDateMismatch    = errors.New("supplementary payslip date does not match primary")
	ErrNoDate          = errors.New("no effective date found in payslip text")
)
