// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
)

// PDFExtractor reads PDF text in process. Pages that fail to decode are
// logged and skipped; a file that cannot be opened is an error.
type PDFExtractor struct {
	logger log.Logger
}

// NewPDFExtractor returns a native extractor.
func NewPDFExtractor(logger log.Logger) *PDFExtractor {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &PDFExtractor{logger: log.With(logger, "component", "extract")}
}

// Extract returns the concatenated text of every page, one page per line
// block.
func (e *PDFExtractor) Extract(ctx context.Context, pdfPath string) (text string, err error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return "", errors.Wrapf(err, "reading PDF %s", pdfPath)
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = errors.Errorf("parsing PDF %s: %v", pdfPath, r)
		}
	}()

	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return "", errors.Wrapf(err, "opening PDF %s", pdfPath)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			level.Debug(e.logger).Log("msg", "skipping page", "path", pdfPath, "page", i, "err", err)
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}

	text = strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.Wrap(ErrNoText, pdfPath)
	}
	level.Debug(e.logger).Log("msg", "extracted text", "path", pdfPath, "pages", r.NumPage(), "chars", len(text))
	return text, nil
}
