package document

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/csg33k/payslip-verify/internal/domain"
	"github.com/csg33k/payslip-verify/internal/ports"
)

// Router picks a TableExtractor by file extension.
type Router struct {
	byExt map[string]ports.TableExtractor
}

var _ ports.TableExtractor = (*Router)(nil)

// NewRouter handles .csv and .json. Register adds more, e.g. a PDF extractor.
func NewRouter() *Router {
	return &Router{byExt: map[string]ports.TableExtractor{
		".csv":  CSVExtractor{},
		".json": JSONExtractor{},
	}}
}

// Register routes ext (with leading dot) to x, replacing any previous one.
func (r *Router) Register(ext string, x ports.TableExtractor) {
	r.byExt[strings.ToLower(ext)] = x
}

func (r *Router) Extract(ctx context.Context, path string) (*domain.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	x, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%s: no table extractor for %q files", path, ext)
	}
	slog.Debug("extracting payslip table", "path", path, "extractor", fmt.Sprintf("%T", x))
	return x.Extract(ctx, path)
}
