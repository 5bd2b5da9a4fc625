// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"time"
)

// PublishedLayout is the date layout used for Paper.Published.
const PublishedLayout = "2006-01-02"

// Paper holds the identifying and descriptive metadata of a retrieved paper
// and the local path of its PDF. A Paper is immutable: it is built once with
// NewPaper and only read afterwards.
type Paper struct {
	shortID   string
	title     string
	authors   []string
	published string
	summary   string
	pdfPath   string
	source    string
}

// PaperFields carries the values used to construct a Paper.
type PaperFields struct {
	// ShortID is the compact identifier assigned by the source (e.g. "2301.07041v1").
	ShortID string

	// Title is the paper title.
	Title string

	// Authors lists the paper authors in source order.
	Authors []string

	// Published is the publication date in YYYY-MM-DD format.
	Published string

	// Summary is the paper abstract.
	Summary string

	// PDFPath is the local filesystem path to the downloaded PDF.
	PDFPath string

	// Source identifies the retriever that produced the paper ("arxiv", "service").
	Source string
}

// NewPaper builds an immutable Paper. The author slice is copied.
func NewPaper(f PaperFields) Paper {
	authors := make([]string, len(f.Authors))
	copy(authors, f.Authors)
	return Paper{
		shortID:   strings.TrimSpace(f.ShortID),
		title:     strings.TrimSpace(f.Title),
		authors:   authors,
		published: strings.TrimSpace(f.Published),
		summary:   strings.TrimSpace(f.Summary),
		pdfPath:   f.PDFPath,
		source:    f.Source,
	}
}

func (p Paper) ShortID() string   { return p.shortID }
func (p Paper) Title() string     { return p.title }
func (p Paper) Published() string { return p.published }
func (p Paper) Summary() string   { return p.summary }
func (p Paper) PDFPath() string   { return p.pdfPath }
func (p Paper) Source() string    { return p.source }

// Authors returns a copy of the author list.
func (p Paper) Authors() []string {
	out := make([]string, len(p.authors))
	copy(out, p.authors)
	return out
}

// Fields returns the constructor values of p, e.g. for serialization.
func (p Paper) Fields() PaperFields {
	return PaperFields{
		ShortID:   p.shortID,
		Title:     p.title,
		Authors:   p.Authors(),
		Published: p.published,
		Summary:   p.summary,
		PDFPath:   p.pdfPath,
		Source:    p.source,
	}
}

// RetrievalRequest is the input of a retrieval run: a search query, the
// download destination, and the submission-date window.
type RetrievalRequest struct {
	SearchQuery string
	OutputDir   string
	Start       time.Time

	// End is the end of the window. The zero value means "now".
	End time.Time
}

// EndOrNow returns End, or now when End is zero.
func (r RetrievalRequest) EndOrNow(now time.Time) time.Time {
	if r.End.IsZero() {
		return now
	}
	return r.End
}
