// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/pdiddy/paper-digest/internal/container"
)

var pdftotextArgs = []string{"pdftotext", "-layout", "-", "-"}

// ContainerExtractor pipes PDFs through pdftotext inside a container image.
type ContainerExtractor struct {
	runtime container.Runtime
	image   string
}

// NewContainerExtractor verifies that image exists locally in rt.
func NewContainerExtractor(ctx context.Context, rt container.Runtime, image string) (*ContainerExtractor, error) {
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, errors.Wrapf(err, "pdftotext image not available in %s", rt.Name())
	}
	return &ContainerExtractor{runtime: rt, image: image}, nil
}

func (c *ContainerExtractor) Extract(ctx context.Context, pdfPath string) (string, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return "", errors.Wrapf(err, "opening PDF %s", pdfPath)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := c.runtime.Run(ctx, c.image, pdftotextArgs, f, &out); err != nil {
		return "", errors.Wrapf(err, "extracting %s with pdftotext", pdfPath)
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", errors.Wrap(ErrNoText, pdfPath)
	}
	return text, nil
}
