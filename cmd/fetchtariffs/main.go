package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/csg33k/payslip-verify/internal/adapters/estv"
	"github.com/csg33k/payslip-verify/internal/config"
	"github.com/csg33k/payslip-verify/internal/ports"
)

// yearList collects a repeatable -year flag.
type yearList []int

func (y *yearList) String() string { return fmt.Sprint([]int(*y)) }

func (y *yearList) Set(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("year %q: %w", v, err)
	}
	*y = append(*y, n)
	return nil
}

func run(ctx context.Context, f ports.TariffFetcher, args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()
	if level, err := cfg.SlogLevel(); err == nil {
		slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
	}

	var (
		dir   string
		years yearList
		list  bool
	)
	fs := flag.NewFlagSet("fetchtariffs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&dir, "d", cfg.TariffDir, "output directory for the tariff files")
	fs.Var(&years, "year", "tax year to download (may repeat, default all)")
	fs.BoolVar(&list, "list", false, "print the known archive URLs and exit")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	supported := f.SupportedYears()
	if list {
		for _, y := range supported {
			fmt.Fprintf(stdout, "%d\t%s\n", y.Year, y.ArchiveURL)
		}
		return 0
	}
	if len(years) == 0 {
		for _, y := range supported {
			years = append(years, y.Year)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	for _, y := range years {
		if err := f.Fetch(ctx, y, dir); err != nil {
			fmt.Fprintln(stderr, "error:", err)
			return 1
		}
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, estv.New(), os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
