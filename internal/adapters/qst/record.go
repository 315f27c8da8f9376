package qst

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/csg33k/payslip-verify/internal/adapters/qst/spec"
	"github.com/csg33k/payslip-verify/internal/money"
)

// Record is one decoded tariff line: its layout tag and every field, trimmed.
type Record struct {
	Tag    string
	Fields map[string]string
}

// Get returns a field value. Panics on a field name outside the layout, which
// is a caller bug, not bad input.
func (r Record) Get(name string) string {
	v, ok := r.Fields[name]
	if !ok {
		panic("qst: field " + name + " not decoded for record " + r.Tag)
	}
	return v
}

// Decode slices line by the layout's column ranges. It reports false when the
// line's record type is not layout.Tag, so one file holding several record
// kinds can be scanned with a single call per kind. Field contents are not
// validated here.
func Decode(line string, layout spec.Layout) (Record, bool) {
	if extract(line, layout.Field(spec.RecordType)) != layout.Tag {
		return Record{}, false
	}
	r := Record{Tag: layout.Tag, Fields: make(map[string]string, len(layout.Fields))}
	for _, f := range layout.Fields {
		r.Fields[f.Name] = extract(line, f)
	}
	return r, true
}

// extract returns the trimmed 1-based inclusive column range of line. Ranges
// past the end of a short line yield what is there.
func extract(line string, f spec.Field) string {
	start, end := f.Start-1, f.End
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return strings.TrimSpace(line[start:end])
}

// Header is the decoded Vorlaufrecord of a tariff file.
type Header struct {
	Canton       string
	CreationDate string
}

func DecodeHeader(line string) (Header, bool) {
	r, ok := Decode(line, spec.Header)
	if !ok {
		return Header{}, false
	}
	return Header{Canton: r.Get(spec.Canton), CreationDate: r.Get(spec.CreationDate)}, true
}

// Bracket is a progressive tariff record with its scaled integer fields
// converted to decimals.
type Bracket struct {
	Canton       string
	TaxClassCode string
	ValidFrom    string
	IncomeFrom   decimal.Decimal
	Step         decimal.Decimal
	MinimumTax   decimal.Decimal
	Rate         decimal.Decimal
	// Line is the 1-based line number in the tariff file; file order decides
	// ties between overlapping brackets.
	Line int
}

// IncomeTo is the inclusive upper bound of the bracket.
func (b Bracket) IncomeTo() decimal.Decimal { return b.IncomeFrom.Add(b.Step) }

// Contains reports whether income lies in [IncomeFrom, IncomeFrom+Step].
func (b Bracket) Contains(income decimal.Decimal) bool {
	return b.IncomeFrom.LessThanOrEqual(income) && b.IncomeTo().GreaterThanOrEqual(income)
}

// Tax applies the bracket rate with the minimum tax floor, rounded to 0.05.
func (b Bracket) Tax(income decimal.Decimal) decimal.Decimal {
	return money.Round05(decimal.Max(b.Rate.Mul(income), b.MinimumTax))
}

// DecodeBracket decodes a progressive tariff line. ok is false for any other
// record type; err is set when a numeric field does not parse.
func DecodeBracket(line string) (b Bracket, ok bool, err error) {
	r, ok := Decode(line, spec.Progressive)
	if !ok {
		return Bracket{}, false, nil
	}
	b, err = bracketFromRecord(r)
	return b, true, err
}

func bracketFromRecord(r Record) (b Bracket, err error) {
	b = Bracket{
		Canton:       r.Get(spec.Canton),
		TaxClassCode: r.Get(spec.TaxClassCode),
		ValidFrom:    r.Get(spec.ValidFrom),
	}
	if b.IncomeFrom, err = money.Scaled(r.Get(spec.IncomeFrom), spec.MoneyScale); err != nil {
		return Bracket{}, err
	}
	if b.Step, err = money.Scaled(r.Get(spec.TariffStep), spec.MoneyScale); err != nil {
		return Bracket{}, err
	}
	if b.MinimumTax, err = money.Scaled(r.Get(spec.MinimumTax), spec.MoneyScale); err != nil {
		return Bracket{}, err
	}
	if b.Rate, err = money.Scaled(r.Get(spec.TaxRate), spec.RateScale); err != nil {
		return Bracket{}, err
	}
	return b, nil
}
