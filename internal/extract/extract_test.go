// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// writeSimplePDF writes a single-page PDF that shows text in Helvetica.
func writeSimplePDF(t *testing.T, path, text string) {
	t.Helper()
	content := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestPDFExtractor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2301.07041v1_Test.pdf")
	writeSimplePDF(t, path, "Hello digest")

	text, err := NewPDFExtractor(nil).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, text, "Hello digest")
}

func TestPDFExtractor_MissingFile(t *testing.T) {
	_, err := NewPDFExtractor(nil).Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoText))
}

func TestPDFExtractor_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o644))

	_, err := NewPDFExtractor(nil).Extract(context.Background(), path)
	assert.Error(t, err)
}

type fakeRuntime struct {
	image    string
	hasImage bool
	output   string
	runErr   error
	gotArgs  []string
}

func (f *fakeRuntime) Name() string    { return "docker" }
func (f *fakeRuntime) Available() bool { return true }

func (f *fakeRuntime) ImageExists(_ context.Context, image string) error {
	if !f.hasImage || image != f.image {
		return errors.Errorf("image %s not found", image)
	}
	return nil
}

func (f *fakeRuntime) Run(_ context.Context, image string, args []string, stdin io.Reader, stdout io.Writer) error {
	f.gotArgs = args
	if f.runErr != nil {
		return f.runErr
	}
	if _, err := io.Copy(io.Discard, stdin); err != nil {
		return err
	}
	_, err := io.WriteString(stdout, f.output)
	return err
}

func TestContainerExtractor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	tests := []struct {
		name    string
		rt      *fakeRuntime
		want    string
		wantErr error
	}{
		{
			name: "text returned",
			rt:   &fakeRuntime{image: DefaultImage, hasImage: true, output: "  Full text body.\n"},
			want: "Full text body.",
		},
		{
			name:    "empty output",
			rt:      &fakeRuntime{image: DefaultImage, hasImage: true, output: "\n\n"},
			wantErr: ErrNoText,
		},
		{
			name:    "container failure",
			rt:      &fakeRuntime{image: DefaultImage, hasImage: true, runErr: errors.New("exit status 1")},
			wantErr: errors.New("exit status 1"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, err := NewContainerExtractor(context.Background(), tt.rt, DefaultImage)
			require.NoError(t, err)

			got, err := x.Extract(context.Background(), path)
			if tt.wantErr != nil {
				require.Error(t, err)
				if tt.wantErr == ErrNoText {
					assert.True(t, errors.Is(err, ErrNoText))
				} else {
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, pdftotextArgs, tt.rt.gotArgs)
		})
	}
}

func TestNewContainerExtractor_MissingImage(t *testing.T) {
	_, err := NewContainerExtractor(context.Background(), &fakeRuntime{image: DefaultImage}, DefaultImage)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "pdftotext image not available"))
}

func TestNew(t *testing.T) {
	x, err := New(context.Background(), types.ExtractionConfig{Backend: types.ExtractionNative}, nil)
	require.NoError(t, err)
	assert.IsType(t, &PDFExtractor{}, x)

	_, err = New(context.Background(), types.ExtractionConfig{Backend: "ocr"}, nil)
	assert.Error(t, err)
}
