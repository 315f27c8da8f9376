// Package payslip wraps extracted payslip tables: row lookup and slicing,
// the line-item registries and the primary/supplementary role rules.
package payslip

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/csg33k/payslip-verify/internal/domain"
)

type Role int

const (
	Primary Role = iota
	Supplementary
)

func (r Role) String() string {
	switch r {
	case Primary:
		return "primary"
	case Supplementary:
		return "supplementary"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Payslip is one extracted document in a role.
type Payslip struct {
	*Table
	Name          string
	Role          Role
	EffectiveDate time.Time
}

// New cleans doc into a Table, reads its effective date and enforces the role:
// a primary payslip has a Monthly wage row, a supplementary one has none and
// carries at least one externally paid row.
func New(doc *domain.Document, role Role) (*Payslip, error) {
	t, err := NewTable(doc.Rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.Name, err)
	}
	date, err := ParseEffectiveDate(doc.Text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.Name, err)
	}
	p := &Payslip{Table: t, Name: doc.Name, Role: role, EffectiveDate: date}
	if err := p.validateRole(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Payslip) validateRole() error {
	hasWage := p.RowExists(RowMonthlyWage)
	switch p.Role {
	case Primary:
		if !hasWage {
			return fmt.Errorf("%s: primary payslip has no %q row: %w", p.Name, RowMonthlyWage, domain.ErrWrongRole)
		}
	case Supplementary:
		if hasWage {
			return fmt.Errorf("%s: supplementary payslip has a %q row: %w", p.Name, RowMonthlyWage, domain.ErrWrongRole)
		}
		for _, l := range p.Labels() {
			if isExternalPayment(l) {
				return nil
			}
		}
		return fmt.Errorf("%s: supplementary payslip has no externally paid row: %w", p.Name, domain.ErrWrongRole)
	default:
		return fmt.Errorf("%s: %v: %w", p.Name, p.Role, domain.ErrWrongRole)
	}
	return nil
}

func (p *Payslip) Summary() domain.DocumentSummary {
	return domain.DocumentSummary{Name: p.Name, EffectiveDate: p.EffectiveDate}
}

var dateRe = regexp.MustCompile(`\b(\d{2})[.-](\d{2})[.-](\d{4})\b`)

// ParseEffectiveDate returns the first DD.MM.YYYY or DD-MM-YYYY date in text.
func ParseEffectiveDate(text string) (time.Time, error) {
	m := dateRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, domain.ErrNoDate
	}
	d, err := time.Parse("02.01.2006", strings.Join(m[1:], "."))
	if err != nil {
		return time.Time{}, fmt.Errorf("effective date %q: %w", m[0], err)
	}
	return d, nil
}
