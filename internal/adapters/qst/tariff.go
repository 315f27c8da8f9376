package qst

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/csg33k/payslip-verify/internal/adapters/qst/spec"
	"github.com/csg33k/payslip-verify/internal/domain"
)

// FileName is the ESTV tariff file name for a year and canton, e.g. tar22zh.txt.
func FileName(year int, canton string) string {
	return fmt.Sprintf("tar%02d%s.txt", year%100, strings.ToLower(canton))
}

// Table holds the brackets of one tax class code from one tariff file, in
// file order.
type Table struct {
	Header   *Header
	Brackets []Bracket
}

// ReadTable scans a tariff file and keeps the progressive records whose tax
// class code equals code. Lines of other record types or codes are skipped
// without decoding their numbers. A header record naming another canton is an
// error.
func ReadTable(r io.Reader, canton, code string) (Table, error) {
	var t Table
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if h, ok := DecodeHeader(line); ok {
			if canton != "" && h.Canton != canton {
				return Table{}, fmt.Errorf("header names %s, want %s: %w", h.Canton, canton, domain.ErrCantonMismatch)
			}
			t.Header = &h
			continue
		}
		rec, ok := Decode(line, spec.Progressive)
		if !ok || rec.Get(spec.TaxClassCode) != code {
			continue
		}
		b, err := bracketFromRecord(rec)
		if err != nil {
			return Table{}, fmt.Errorf("line %d: %w", lineNo, err)
		}
		b.Line = lineNo
		t.Brackets = append(t.Brackets, b)
	}
	if err := sc.Err(); err != nil {
		return Table{}, err
	}
	return t, nil
}

// Loader reads tariff tables from a directory of unpacked ESTV files.
type Loader struct {
	dir string
}

func NewLoader(dir string) *Loader { return &Loader{dir: dir} }

func (l *Loader) Dir() string { return l.dir }

// Load returns the brackets of code in the (year, canton) tariff file.
func (l *Loader) Load(year int, canton, code string) (Table, error) {
	path := filepath.Join(l.dir, FileName(year, canton))
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Table{}, fmt.Errorf("%s: %w", path, domain.ErrTariffNotFound)
	}
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	t, err := ReadTable(f, canton, code)
	if err != nil {
		return Table{}, fmt.Errorf("read %s: %w", path, err)
	}
	slog.Debug("tariff table loaded", "file", path, "code", code, "brackets", len(t.Brackets))
	return t, nil
}

// BracketFinder picks the bracket an income falls into.
type BracketFinder interface {
	FindBracket(ctx context.Context, brackets []Bracket, income decimal.Decimal) (Bracket, error)
}

// ScanFinder walks the brackets in file order and returns the first whose
// closed interval holds income.
type ScanFinder struct{}

func (ScanFinder) FindBracket(_ context.Context, brackets []Bracket, income decimal.Decimal) (Bracket, error) {
	for _, b := range brackets {
		if b.Contains(income) {
			return b, nil
		}
	}
	return Bracket{}, fmt.Errorf("income %s: %w", income, domain.ErrNoBracket)
}

// Calculator implements ports.WithholdingTaxCalculator on top of a Loader.
//
// This is a strongly simplified reading of ESTV Kreisschreiben Nr. 45 and the
// Swissdec payroll guidelines: monthly tariffs only, no pro-rating for partial
// months, no special cases.
type Calculator struct {
	loader *Loader
	finder BracketFinder
}

// NewCalculator uses ScanFinder when finder is nil.
func NewCalculator(loader *Loader, finder BracketFinder) *Calculator {
	if finder == nil {
		finder = ScanFinder{}
	}
	return &Calculator{loader: loader, finder: finder}
}

func (c *Calculator) Calculate(ctx context.Context, year int, canton, code string, income decimal.Decimal, allowAnnualModel bool) (decimal.Decimal, error) {
	if HasAnnualModel(canton) && !allowAnnualModel {
		return decimal.Zero, fmt.Errorf("canton %s: %w", canton, domain.ErrAnnualModel)
	}
	t, err := c.loader.Load(year, canton, code)
	if err != nil {
		return decimal.Zero, err
	}
	b, err := c.finder.FindBracket(ctx, t.Brackets, income)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s %d %s: %w", canton, year, code, err)
	}
	return b.Tax(income), nil
}
