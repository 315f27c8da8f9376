// Package templates holds the HTML components of the verification report.
package templates

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/csg33k/payslip-verify/internal/domain"
)

var severities = []domain.Severity{domain.SeverityPass, domain.SeverityFail, domain.SeverityWarn, domain.SeverityNote}

var pageTmpl = template.Must(template.New("page").Funcs(template.FuncMap{
	"sevClass":    severityClass,
	"date":        dateDisplay,
	"contextKeys": contextKeys,
	"severities":  func() []domain.Severity { return severities },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Payslip verification {{date .EffectiveDate}}</title>
<style>
  :root {
    --ink: #0d1117;
    --paper: #f5f0e8;
    --ledger: #e8e0cc;
    --fail: #c0392b;
    --pass: #2c6e49;
    --warn: #b7791f;
    --muted: #6b5e4e;
  }
  body { background: var(--paper); color: var(--ink); font-family: 'IBM Plex Sans', sans-serif; margin: 2rem; }
  .mono { font-family: 'IBM Plex Mono', monospace; }
  header { background: var(--ink); color: var(--paper); padding: 0.8rem 1rem; }
  .card { background: rgba(255,255,255,0.7); border: 1px solid var(--ledger); border-left: 4px solid var(--ink); padding: 0.6rem 1rem; margin: 1rem 0; }
  table { border-collapse: collapse; width: 100%; }
  th { text-align: left; font-size: 0.7rem; letter-spacing: 0.1em; text-transform: uppercase; color: var(--muted); border-bottom: 2px solid var(--ink); }
  td { padding: 4px 6px; border-bottom: 1px solid var(--ledger); vertical-align: top; }
  .sev { font-family: 'IBM Plex Mono', monospace; font-weight: 600; }
  .pass .sev { color: var(--pass); }
  .fail .sev { color: var(--fail); }
  .warn .sev { color: var(--warn); }
  .note .sev { color: var(--muted); }
  .ctx { font-size: 0.8rem; color: var(--muted); }
</style>
</head>
<body>
<header><strong>PAYSLIP VERIFICATION</strong> <span class="mono">{{.RunID}}</span></header>
{{template "documents" .}}
{{template "summary" .}}
{{template "findings" .Findings}}
</body>
</html>
{{define "documents"}}<section class="card">
<table>
<tr><th>Role</th><th>Document</th><th>Effective date</th></tr>
<tr><td>Primary</td><td class="mono">{{.Primary.Name}}</td><td class="mono">{{date .Primary.EffectiveDate}}</td></tr>
{{range .Supplements}}<tr><td>Supplementary</td><td class="mono">{{.Name}}</td><td class="mono">{{date .EffectiveDate}}</td></tr>
{{end}}</table>
</section>
{{end}}
{{define "summary"}}<section class="card summary">
{{$r := .}}{{range severities}}<span class="{{sevClass .}}"><span class="sev">{{.}}</span> {{$r.Count .}}</span>
{{end}}</section>
{{end}}
{{define "findings"}}<section class="card">
<table>
<tr><th>Severity</th><th>Check</th><th>Message</th></tr>
{{range .}}<tr class="{{sevClass .Severity}}"><td class="sev">{{.Severity}}</td><td>{{.Check}}</td><td>{{.Message}}{{$ctx := .Context}}{{range contextKeys $ctx}}<div class="ctx">{{.}}: <span class="mono">{{index $ctx .}}</span></div>{{end}}</td></tr>
{{end}}</table>
</section>
{{end}}`))

func component(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return pageTmpl.ExecuteTemplate(w, name, data)
	})
}

// Report renders a full HTML page for r.
func Report(r *domain.Report) templ.Component { return component("page", r) }

// Documents lists the primary payslip and its supplements.
func Documents(r *domain.Report) templ.Component { return component("documents", r) }

// Summary shows the finding counts per severity.
func Summary(r *domain.Report) templ.Component { return component("summary", r) }

// Findings renders one table row per finding, in report order.
func Findings(fs []domain.Finding) templ.Component { return component("findings", fs) }
