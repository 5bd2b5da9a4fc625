// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPaperCopiesAuthors(t *testing.T) {
	authors := []string{"Alice Smith", "Bob Jones"}
	p := NewPaper(PaperFields{Title: "  Attention  ", Authors: authors})

	authors[0] = "Mallory"
	assert.Equal(t, []string{"Alice Smith", "Bob Jones"}, p.Authors())

	got := p.Authors()
	got[1] = "Eve"
	assert.Equal(t, "Bob Jones", p.Authors()[1])
	assert.Equal(t, "Attention", p.Title())
}

func TestPaperFieldsRoundTrip(t *testing.T) {
	f := PaperFields{
		ShortID:   "2301.07041v1",
		Title:     "Test Paper",
		Authors:   []string{"Alice"},
		Published: "2023-01-17",
		Summary:   "Abstract.",
		PDFPath:   "/tmp/x.pdf",
		Source:    "arxiv",
	}
	assert.Equal(t, f, NewPaper(f).Fields())
}

func TestRetrievalRequestEndOrNow(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now, RetrievalRequest{}.EndOrNow(now))

	end := now.AddDate(0, 0, -1)
	assert.Equal(t, end, RetrievalRequest{End: end}.EndOrNow(now))
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces", "Attention Is All You Need", "Attention_Is_All_You_Need"},
		{"slashes", "Input/Output and C:\\paths", "Input_Output_and_C:_paths"},
		{"traversal", "../../etc/passwd", ".._.._etc_passwd"},
		{"truncated", strings.Repeat("a", 80), strings.Repeat("a", MaxTitleLength)},
		{"multibyte truncated by rune", strings.Repeat("é", 60), strings.Repeat("é", MaxTitleLength)},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeTitle(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, SanitizeTitle(got), "sanitizing must be idempotent")
		})
	}
}

func TestFilenameHasNoSeparators(t *testing.T) {
	titles := []string{
		"A Study of / and \\ in Titles",
		"../../../../root/.ssh/authorized_keys",
		"   leading and trailing   ",
		strings.Repeat("long title words ", 10),
	}
	for _, title := range titles {
		name := Filename("hep-th/9901001v1", title)
		assert.NotContains(t, name, "/")
		assert.NotContains(t, name, "\\")
		assert.NotContains(t, name, " ")
		assert.True(t, strings.HasSuffix(name, ".pdf"))
	}
}

func TestFilenameDistinctShortIDs(t *testing.T) {
	title := "Same Title For Both"
	a := Filename("2301.07041v1", title)
	b := Filename("2301.07042v1", title)
	assert.NotEqual(t, a, b)
	assert.Equal(t, "2301.07041v1_Same_Title_For_Both.pdf", a)
}
