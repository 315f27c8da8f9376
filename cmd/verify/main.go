package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/csg33k/payslip-verify/internal/adapters/console"
	"github.com/csg33k/payslip-verify/internal/adapters/document"
	"github.com/csg33k/payslip-verify/internal/adapters/gemini"
	"github.com/csg33k/payslip-verify/internal/adapters/htmlreport"
	"github.com/csg33k/payslip-verify/internal/adapters/jsonreport"
	"github.com/csg33k/payslip-verify/internal/adapters/pdf"
	"github.com/csg33k/payslip-verify/internal/adapters/qst"
	sqliteadapter "github.com/csg33k/payslip-verify/internal/adapters/sqlite"
	"github.com/csg33k/payslip-verify/internal/config"
	"github.com/csg33k/payslip-verify/internal/domain"
	"github.com/csg33k/payslip-verify/internal/money"
	"github.com/csg33k/payslip-verify/internal/payslip"
	"github.com/csg33k/payslip-verify/internal/ports"
	"github.com/csg33k/payslip-verify/internal/reconcile"
)

const (
	exitOK     = 0
	exitFatal  = 1
	exitFailed = 2
)

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// options are the parsed command line.
type options struct {
	primary     string
	supplements stringList
	birthYear   int
	baseSalary  string
	pension     string
	withholding bool
	format      string
	output      string
	noColor     bool
}

func parseFlags(args []string, defaultFormat string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: verify -y <birth year> [flags] <primary payslip>")
		fs.PrintDefaults()
	}
	fs.IntVar(&o.birthYear, "y", 0, "birth year of the employee (required)")
	fs.StringVar(&o.baseSalary, "b", "", "annual base salary in CHF")
	fs.StringVar(&o.pension, "p", "", "monthly pension contribution from the certificate of insurance")
	fs.BoolVar(&o.withholding, "w", false, "employee is subject to withholding tax")
	fs.Var(&o.supplements, "s", "supplementary payslip (may repeat)")
	fs.StringVar(&o.format, "format", defaultFormat, "report format: "+strings.Join(config.ReportFormats, "|"))
	fs.StringVar(&o.output, "o", "", "write the report to this file instead of stdout")
	fs.BoolVar(&o.noColor, "no-color", false, "disable colored text output")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return o, errors.New("exactly one primary payslip is required")
	}
	o.primary = fs.Arg(0)
	if o.birthYear <= 0 {
		return o, errors.New("-y birth year is required")
	}
	o.format = strings.ToLower(o.format)
	if !config.ValidFormat(o.format) {
		return o, fmt.Errorf("unknown report format %q", o.format)
	}
	return o, nil
}

func optionalAmount(name, s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := money.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &d, nil
}

func (o options) employee() (domain.EmployeeFacts, error) {
	base, err := optionalAmount("-b", o.baseSalary)
	if err != nil {
		return domain.EmployeeFacts{}, err
	}
	pension, err := optionalAmount("-p", o.pension)
	if err != nil {
		return domain.EmployeeFacts{}, err
	}
	if pension != nil {
		abs := pension.Abs()
		pension = &abs
	}
	return domain.EmployeeFacts{
		BirthYear:           o.birthYear,
		WithholdingTax:      o.withholding,
		AnnualBaseSalary:    base,
		PensionContribution: pension,
	}, nil
}

func renderer(format string, color bool) ports.ReportRenderer {
	switch format {
	case "json":
		return jsonreport.Renderer{}
	case "html":
		return htmlreport.Renderer{}
	case "pdf":
		return pdf.Renderer{}
	default:
		return console.Renderer{Color: color}
	}
}

// colorTerminal reports whether w is a character device.
func colorTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

func newExtractor(ctx context.Context, cfg config.Config) (ports.TableExtractor, func(), error) {
	router := document.NewRouter()
	if cfg.GeminiAPIKey == "" {
		slog.Debug("GEMINI_API_KEY not set, PDF payslips are not supported")
		return router, func() {}, nil
	}
	gx, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, nil, err
	}
	router.Register(".pdf", gx)
	slog.Debug("registered gemini extractor", "model", cfg.GeminiModel)
	return router, func() { gx.Close() }, nil
}

func newCalculator(cfg config.Config) (*qst.Calculator, func(), error) {
	loader := qst.NewLoader(cfg.TariffDir)
	slog.Debug("withholding tax tariffs", "dir", loader.Dir(), "index", cfg.BracketIndex)
	if cfg.BracketIndex != config.IndexSQLite {
		return qst.NewCalculator(loader, qst.ScanFinder{}), func() {}, nil
	}
	idx, err := sqliteadapter.New()
	if err != nil {
		return nil, nil, fmt.Errorf("open bracket index: %w", err)
	}
	return qst.NewCalculator(loader, idx), func() { idx.Close() }, nil
}

func load(ctx context.Context, x ports.TableExtractor, path string, role payslip.Role) (*payslip.Payslip, error) {
	doc, err := x.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	if doc.Name == "" {
		doc.Name = filepath.Base(path)
	}
	return payslip.New(doc, role)
}

func verify(ctx context.Context, cfg config.Config, o options) (*domain.Report, error) {
	emp, err := o.employee()
	if err != nil {
		return nil, err
	}
	x, closeX, err := newExtractor(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer closeX()

	primary, err := load(ctx, x, o.primary, payslip.Primary)
	if err != nil {
		return nil, err
	}
	var supplements []*payslip.Payslip
	for _, path := range o.supplements {
		s, err := load(ctx, x, path, payslip.Supplementary)
		if err != nil {
			return nil, err
		}
		supplements = append(supplements, s)
	}

	calc, closeCalc, err := newCalculator(cfg)
	if err != nil {
		return nil, err
	}
	defer closeCalc()

	engine, err := reconcile.New(emp, primary, supplements, calc)
	if err != nil {
		return nil, err
	}
	return engine.Run(ctx)
}

func writeReport(ctx context.Context, r ports.ReportRenderer, rep *domain.Report, path string, stdout io.Writer) error {
	if path == "" {
		return r.Render(ctx, rep, stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Render(ctx, rep, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()
	level, err := cfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, "configuration:", err)
		return exitFatal
	}

	o, err := parseFlags(args, cfg.ReportFormat, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return exitFatal
	}

	rep, err := verify(ctx, cfg, o)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitFatal
	}

	color := !o.noColor && o.output == "" && colorTerminal(stdout)
	if err := writeReport(ctx, renderer(o.format, color), rep, o.output, stdout); err != nil {
		fmt.Fprintln(stderr, "write report:", err)
		return exitFatal
	}
	if rep.Failed() {
		return exitFailed
	}
	return exitOK
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
