package payslip

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/csg33k/payslip-verify/internal/domain"
	"github.com/csg33k/payslip-verify/internal/money"
)

// Column names produced by the table extractors.
const (
	ColTotal    = "Total"
	ColRate     = "Rate"
	ColSubtotal = "Sub-total"
)

// strictColumns must hold a decimal in every row; a non-numeric cell there
// fails construction. Other columns fail only when the cell is looked up.
var strictColumns = map[string]bool{
	ColTotal: true,
}

type cell struct {
	raw     string
	num     decimal.Decimal
	numeric bool
}

type tableRow struct {
	label string
	cells map[string]cell
}

// Table is a cleaned line-item table, ordered as extracted. It is read-only
// once NewTable returns.
type Table struct {
	rows    []tableRow
	index   map[string]int
	columns map[string]bool
}

// NewTable cleans extracted rows: drops unnamed columns and label-less rows,
// treats empty cells as zero and parses every cell once.
func NewTable(rows []domain.Row) (*Table, error) {
	t := &Table{index: make(map[string]int), columns: make(map[string]bool)}
	for i, r := range rows {
		label := strings.TrimSpace(r.Label)
		if label == "" {
			continue
		}
		tr := tableRow{label: label, cells: make(map[string]cell, len(r.Cells))}
		for col, raw := range r.Cells {
			col = strings.TrimSpace(col)
			if col == "" || strings.HasPrefix(col, "Unnamed:") {
				continue
			}
			c := cell{raw: strings.TrimSpace(raw)}
			n, err := money.Parse(c.raw)
			switch {
			case err == nil:
				c.num, c.numeric = n, true
			case strictColumns[col]:
				return nil, fmt.Errorf("row %d %q, column %s: %w", i+1, label, col, err)
			}
			tr.cells[col] = c
			t.columns[col] = true
		}
		if _, dup := t.index[label]; !dup {
			t.index[label] = len(t.rows)
		}
		t.rows = append(t.rows, tr)
	}
	return t, nil
}

// Labels returns the row labels in table order.
func (t *Table) Labels() []string {
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.label
	}
	return out
}

func (t *Table) Len() int { return len(t.rows) }

func (t *Table) RowExists(label string) bool {
	_, ok := t.index[label]
	return ok
}

// Lookup is the strict cell lookup. It fails with ErrRowNotFound or
// ErrColumnNotFound; a known column left empty in this row is zero.
func (t *Table) Lookup(label, col string) (decimal.Decimal, error) {
	i, ok := t.index[label]
	if !ok {
		return decimal.Zero, fmt.Errorf("%q: %w", label, domain.ErrRowNotFound)
	}
	if !t.columns[col] {
		return decimal.Zero, fmt.Errorf("%q: %w", col, domain.ErrColumnNotFound)
	}
	c, ok := t.rows[i].cells[col]
	if !ok {
		return decimal.Zero, nil
	}
	if !c.numeric {
		return decimal.Zero, fmt.Errorf("%q/%s: not a number: %q", label, col, c.raw)
	}
	return c.num, nil
}

// Value is the lenient lookup: anything Lookup would reject reads as zero.
func (t *Table) Value(label, col string) decimal.Decimal {
	v, err := t.Lookup(label, col)
	if err != nil {
		return decimal.Zero
	}
	return v
}

// Total is Value(label, ColTotal).
func (t *Table) Total(label string) decimal.Decimal { return t.Value(label, ColTotal) }

// ValueExists reports whether Lookup succeeds, and with nonZero also that the
// value is not zero.
func (t *Table) ValueExists(label, col string, nonZero bool) bool {
	v, err := t.Lookup(label, col)
	if err != nil {
		return false
	}
	return !nonZero || !v.IsZero()
}

// Section is a contiguous run of rows of one table.
type Section struct {
	t    *Table
	from int
	to   int // exclusive
}

func (s Section) Len() int { return s.to - s.from }

func (s Section) Labels() []string {
	out := make([]string, 0, s.Len())
	for _, r := range s.t.rows[s.from:s.to] {
		out = append(out, r.label)
	}
	return out
}

// ColumnSum adds col over the section in exact decimal arithmetic. Empty and
// non-numeric cells add nothing.
func (s Section) ColumnSum(col string) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range s.t.rows[s.from:s.to] {
		if c, ok := r.cells[col]; ok && c.numeric {
			sum = sum.Add(c.num)
		}
	}
	return sum
}

// SliceRows returns the rows between two named boundaries. An empty start
// begins at the first row and an empty end runs through the last row; the
// include flags only apply to named boundaries.
func (t *Table) SliceRows(start, end string, includeStart, includeEnd bool) (Section, error) {
	from, to := 0, len(t.rows)
	if start != "" {
		i, ok := t.index[start]
		if !ok {
			return Section{}, fmt.Errorf("slice start %q: %w", start, domain.ErrRowNotFound)
		}
		from = i + 1
		if includeStart {
			from = i
		}
	}
	if end != "" {
		i, ok := t.index[end]
		if !ok {
			return Section{}, fmt.Errorf("slice end %q: %w", end, domain.ErrRowNotFound)
		}
		to = i
		if includeEnd {
			to = i + 1
		}
	}
	if to < from {
		to = from
	}
	return Section{t: t, from: from, to: to}, nil
}

// SubtotalBlock returns the rows right after totalRow that carry a non-zero
// Sub-total, stopping at the first row that does not. ok is false when there
// is no such row directly below totalRow, or totalRow is absent.
func (t *Table) SubtotalBlock(totalRow string) (Section, bool) {
	i, ok := t.index[totalRow]
	if !ok {
		return Section{}, false
	}
	from := i + 1
	to := from
	for to < len(t.rows) && t.isSubtotal(to) {
		to++
	}
	if to == from {
		return Section{}, false
	}
	return Section{t: t, from: from, to: to}, true
}

func (t *Table) isSubtotal(i int) bool {
	c, ok := t.rows[i].cells[ColSubtotal]
	return ok && c.numeric && !c.num.IsZero()
}
