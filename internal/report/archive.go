package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go-payouts/internal/period"

	"go.uber.org/zap"
)

// DocumentSource produces the current document of a period.
type DocumentSource func(ctx context.Context, p period.Period) (Document, error)

// Archiver stores period PDFs under a directory, one file per period.
type Archiver struct {
	dir    string
	source DocumentSource
	opts   PDFOptions
	logger *zap.Logger
}

func NewArchiver(dir string, source DocumentSource, opts PDFOptions) *Archiver {
	return &Archiver{
		dir:    dir,
		source: source,
		opts:   opts,
		logger: zap.L().Named("report.archiver"),
	}
}

func (a *Archiver) FilePath(p period.Period) string {
	return filepath.Join(a.dir, fmt.Sprintf("payouts_%s.pdf", p))
}

// Archive renders the period and replaces its file atomically.
func (a *Archiver) Archive(ctx context.Context, p period.Period) (string, error) {
	doc, err := a.source(ctx, p)
	if err != nil {
		return "", fmt.Errorf("load document for %s: %w", p, err)
	}

	data, err := RenderPDF(doc, a.opts)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", err
	}

	path := a.FilePath(p)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}

	a.logger.Debug("payouts document written", zap.String("period", p.String()), zap.String("path", path))
	return path, nil
}
