package templates

import (
	"sort"
	"time"

	"github.com/csg33k/payslip-verify/internal/domain"
)

// severityClass maps a severity to its CSS class.
func severityClass(s domain.Severity) string {
	switch s {
	case domain.SeverityPass:
		return "pass"
	case domain.SeverityFail:
		return "fail"
	case domain.SeverityWarn:
		return "warn"
	default:
		return "note"
	}
}

func dateDisplay(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}

// contextKeys returns the context keys of a finding, expected before actual
// and the rest sorted.
func contextKeys(ctx map[string]string) []string {
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	rank := func(k string) int {
		switch k {
		case "expected":
			return 0
		case "actual":
			return 1
		}
		return 2
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return keys
}
