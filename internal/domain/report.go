package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Severity string

const (
	SeverityPass Severity = "PASS"
	SeverityFail Severity = "FAIL"
	SeverityWarn Severity = "WARN"
	SeverityNote Severity = "NOTE"
)

// Finding is a single diagnostic emitted by a reconciliation check.
type Finding struct {
	Severity Severity          `json:"severity"`
	Check    string            `json:"check"`
	Message  string            `json:"message"`
	Context  map[string]string `json:"context,omitempty"`
}

// Report is the ordered list of findings for one run. Findings are appended in
// the order the checks ran; nothing is sorted afterwards.
type Report struct {
	RunID         uuid.UUID         `json:"runId"`
	CreatedAt     time.Time         `json:"createdAt"`
	EffectiveDate time.Time         `json:"effectiveDate"`
	Primary       DocumentSummary   `json:"primary"`
	Supplements   []DocumentSummary `json:"supplements,omitempty"`
	Findings      []Finding         `json:"findings"`
}

func NewReport() *Report {
	return &Report{RunID: uuid.New(), CreatedAt: time.Now()}
}

func (r *Report) add(sev Severity, check, msg string, ctx map[string]string) {
	r.Findings = append(r.Findings, Finding{Severity: sev, Check: check, Message: msg, Context: ctx})
}

func (r *Report) Pass(check string)      { r.add(SeverityPass, check, check, nil) }
func (r *Report) Fail(check, msg string) { r.add(SeverityFail, check, msg, nil) }
func (r *Report) Warn(check, msg string) { r.add(SeverityWarn, check, msg, nil) }
func (r *Report) Note(check, msg string) { r.add(SeverityNote, check, msg, nil) }

func (r *Report) Passf(check, format string, a ...any) {
	r.add(SeverityPass, check, fmt.Sprintf(format, a...), nil)
}

// Compare records PASS when |actual-expected| <= tolerance, FAIL otherwise.
// It reports whether the comparison passed.
func (r *Report) Compare(check string, actual, expected, tolerance decimal.Decimal) bool {
	if actual.Sub(expected).Abs().GreaterThan(tolerance) {
		r.add(SeverityFail, check, check, map[string]string{
			"expected": expected.String(),
			"actual":   actual.String(),
		})
		return false
	}
	r.add(SeverityPass, check, check, nil)
	return true
}

// Count returns the number of findings with the given severity.
func (r *Report) Count(sev Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

func (r *Report) Failed() bool { return r.Count(SeverityFail) > 0 }

// ByCheck returns all findings of one check, in order.
func (r *Report) ByCheck(check string) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Check == check {
			out = append(out, f)
		}
	}
	return out
}
