// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns downloaded PDFs into plain text. The native backend
// parses the PDF in process; the container backend pipes it through
// pdftotext in a docker or podman container.
package extract

import (
	"context"

	"github.com/go-kit/log"
	"github.com/pkg/errors"

	"github.com/pdiddy/paper-digest/internal/container"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// ErrNoText is returned when a PDF parses but yields no text.
var ErrNoText = errors.New("no text extracted")

// Extractor returns the plain text of the PDF at pdfPath.
type Extractor interface {
	Extract(ctx context.Context, pdfPath string) (string, error)
}

// DefaultImage provides pdftotext for the container backend.
const DefaultImage = "minidocks/poppler:latest"

// New returns the extractor selected by cfg.Backend.
func New(ctx context.Context, cfg types.ExtractionConfig, logger log.Logger) (Extractor, error) {
	switch cfg.Backend {
	case types.ExtractionContainer:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		image := cfg.Image
		if image == "" {
			image = DefaultImage
		}
		return NewContainerExtractor(ctx, rt, image)
	case types.ExtractionNative, "":
		return NewPDFExtractor(logger), nil
	default:
		return nil, errors.Errorf("unknown extraction backend %q", cfg.Backend)
	}
}
