// Package estv downloads the withholding tax tariff archives published by
// the Swiss Federal Tax Administration and unpacks the tariff files.
package estv

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/valyala/fasthttp"

	"github.com/csg33k/payslip-verify/internal/domain"
	"github.com/csg33k/payslip-verify/internal/ports"
)

const (
	DefaultBaseURL = "https://www.estv.admin.ch/dam/estv/de/dokumente/qst/schweiz"
	// maxArchiveSize bounds both the download and every nested archive.
	maxArchiveSize = 256 << 20
	defaultTimeout = 2 * time.Minute
)

// archiveName returns the published archive name for year. The naming
// scheme changed with the 2024 tariffs.
func archiveName(year int) string {
	if year < 2024 {
		return fmt.Sprintf("qst-ch-tar%d-de.zip", year)
	}
	return fmt.Sprintf("tar%d.zip", year)
}

// publishedYears is ascending.
var publishedYears = []int{2021, 2022, 2023, 2024}

type Fetcher struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
}

var _ ports.TariffFetcher = (*Fetcher)(nil)

type Option func(*Fetcher)

// WithClient replaces the HTTP client, e.g. with one dialing an in-memory listener.
func WithClient(c *fasthttp.Client) Option { return func(f *Fetcher) { f.client = c } }

func WithBaseURL(u string) Option {
	return func(f *Fetcher) { f.baseURL = strings.TrimSuffix(u, "/") }
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:  &fasthttp.Client{Name: "payslip-verify", MaxResponseBodySize: maxArchiveSize},
		baseURL: DefaultBaseURL,
		timeout: defaultTimeout,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// URL is the download location of the archive for year.
func (f *Fetcher) URL(year int) string {
	name := archiveName(year)
	return fmt.Sprintf("%s/%s.download.zip/%s", f.baseURL, name, name)
}

func (f *Fetcher) SupportedYears() []domain.TaxYearInfo {
	out := make([]domain.TaxYearInfo, 0, len(publishedYears))
	for _, y := range publishedYears {
		out = append(out, domain.TaxYearInfo{Year: y, ArchiveURL: f.URL(y)})
	}
	return out
}

func (f *Fetcher) supported(year int) bool {
	for _, y := range publishedYears {
		if y == year {
			return true
		}
	}
	return false
}

// Fetch downloads the archive of year and extracts every nested tariff
// archive into dir.
func (f *Fetcher) Fetch(ctx context.Context, year int, dir string) error {
	if !f.supported(year) {
		return fmt.Errorf("tariff archive for %d: %w", year, domain.ErrUnsupportedYear)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline := time.Now().Add(f.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	url := f.URL(year)
	slog.Info("downloading tariff archive", "year", year, "url", url)
	status, body, err := f.client.GetDeadline(nil, url, deadline)
	if err != nil {
		return fmt.Errorf("download %s: %w", archiveName(year), err)
	}
	if status != fasthttp.StatusOK {
		return fmt.Errorf("download %s: HTTP %d", archiveName(year), status)
	}

	n, err := ExtractArchive(body, dir)
	if err != nil {
		return fmt.Errorf("extract %s: %w", archiveName(year), err)
	}
	slog.Info("tariff files extracted", "year", year, "files", n, "dir", dir)
	return nil
}

// ExtractArchive unpacks an outer archive that holds only nested .zip
// archives and writes the contents of each nested archive into dir. It
// returns the number of files written.
func ExtractArchive(data []byte, dir string) (int, error) {
	outer, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	for _, f := range outer.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".zip") {
			return 0, fmt.Errorf("unexpected entry %q in outer archive", f.Name)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	written := 0
	for _, f := range outer.File {
		nested, err := readEntry(f)
		if err != nil {
			return written, err
		}
		inner, err := zip.NewReader(bytes.NewReader(nested), int64(len(nested)))
		if err != nil {
			return written, fmt.Errorf("%s: %w", f.Name, err)
		}
		for _, e := range inner.File {
			if e.FileInfo().IsDir() {
				continue
			}
			if err := extractFile(e, dir); err != nil {
				return written, fmt.Errorf("%s: %w", f.Name, err)
			}
			written++
		}
	}
	return written, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(io.LimitReader(rc, maxArchiveSize+1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	if len(b) > maxArchiveSize {
		return nil, fmt.Errorf("%s: nested archive larger than %d bytes", f.Name, maxArchiveSize)
	}
	return b, nil
}

func extractFile(e *zip.File, dir string) error {
	name := filepath.Clean(filepath.FromSlash(e.Name))
	if filepath.IsAbs(name) || name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)) {
		return fmt.Errorf("entry %q escapes the output directory", e.Name)
	}
	dst := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	rc, err := e.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, io.LimitReader(rc, maxArchiveSize)); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
