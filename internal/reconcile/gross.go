package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/csg33k/payslip-verify/internal/payslip"
)

// GrossTotals are gross salary sums over one or more payslips.
type GrossTotals struct {
	Gross decimal.Decimal
	// SIBase is Gross without the social insurance exempt components.
	SIBase decimal.Decimal
	// NonCash is the part of Gross paid outside the payroll.
	NonCash decimal.Decimal
}

func (g GrossTotals) add(o GrossTotals) GrossTotals {
	return GrossTotals{
		Gross:   g.Gross.Add(o.Gross),
		SIBase:  g.SIBase.Add(o.SIBase),
		NonCash: g.NonCash.Add(o.NonCash),
	}
}

// grossOf sums the rows above the Gross salary row of p and lists the labels
// missing from the gross component registry. Unknown rows still count.
func grossOf(p *payslip.Payslip) (GrossTotals, []string, error) {
	rows, err := p.SliceRows("", payslip.RowGrossSalary, false, false)
	if err != nil {
		return GrossTotals{}, nil, err
	}
	sum := rows.ColumnSum(payslip.ColTotal)
	t := GrossTotals{Gross: sum, SIBase: sum, NonCash: decimal.Zero}
	var unknown []string
	for _, l := range rows.Labels() {
		c, ok := payslip.GrossComponent(l)
		if !ok {
			unknown = append(unknown, l)
			continue
		}
		if c.SIExempt {
			t.SIBase = t.SIBase.Sub(p.Total(l))
		}
		if c.ExternalPayment {
			t.NonCash = t.NonCash.Add(p.Total(l))
		}
	}
	return t, unknown, nil
}

// SumGross aggregates the gross salary totals of payslips. The result does
// not depend on their order.
func SumGross(slips ...*payslip.Payslip) (GrossTotals, error) {
	var total GrossTotals
	for _, p := range slips {
		t, _, err := grossOf(p)
		if err != nil {
			return GrossTotals{}, err
		}
		total = total.add(t)
	}
	return total, nil
}
