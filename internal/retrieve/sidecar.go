// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// metadata is the YAML sidecar written next to every downloaded PDF.
type metadata struct {
	ShortID     string    `yaml:"short_id"`
	Title       string    `yaml:"title"`
	Authors     []string  `yaml:"authors"`
	Published   string    `yaml:"published"`
	Summary     string    `yaml:"summary"`
	PDFURL      string    `yaml:"pdf_url,omitempty"`
	Source      string    `yaml:"source"`
	RetrievedAt time.Time `yaml:"retrieved_at"`
}

// SidecarPath returns the metadata path for a PDF: the same name with a
// .yaml extension.
func SidecarPath(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, ".pdf") + ".yaml"
}

func writeSidecar(p types.Paper, pdfURL string, retrievedAt time.Time) error {
	f := p.Fields()
	data, err := yaml.Marshal(metadata{
		ShortID:     f.ShortID,
		Title:       f.Title,
		Authors:     f.Authors,
		Published:   f.Published,
		Summary:     f.Summary,
		PDFURL:      pdfURL,
		Source:      f.Source,
		RetrievedAt: retrievedAt.UTC(),
	})
	if err != nil {
		return errors.Wrap(err, "marshaling metadata")
	}
	return os.WriteFile(SidecarPath(f.PDFPath), data, 0o644)
}

// readSidecar loads the metadata written for pdfPath.
func readSidecar(pdfPath string) (types.Paper, error) {
	data, err := os.ReadFile(SidecarPath(pdfPath))
	if err != nil {
		return types.Paper{}, err
	}
	var m metadata
	if err := yaml.Unmarshal(data, &m); err != nil {
		return types.Paper{}, errors.Wrapf(err, "parsing metadata for %s", pdfPath)
	}
	return types.NewPaper(types.PaperFields{
		ShortID:   m.ShortID,
		Title:     m.Title,
		Authors:   m.Authors,
		Published: m.Published,
		Summary:   m.Summary,
		PDFPath:   pdfPath,
		Source:    m.Source,
	}), nil
}
