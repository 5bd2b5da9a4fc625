// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"encoding/xml"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cavaliergopher/grab/v3"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"github.com/pdiddy/paper-digest/internal/logging"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// arxivAPIBase and arxivPDFBase are declared as vars so tests can
// substitute an httptest server.
var (
	arxivAPIBase = "https://export.arxiv.org/api/query"
	arxivPDFBase = "https://arxiv.org/pdf/"
)

const (
	defaultPageSize   = 5
	defaultMaxResults = 100
	defaultUserAgent  = "paper-digest/1.0 (+https://github.com/pdiddy/paper-digest)"
	sourceArxiv       = "arxiv"

	// submittedDateLayout is the day prefix of arXiv submittedDate ranges.
	submittedDateLayout = "20060102"
)

// ArchiveRetriever searches the arXiv API sorted by submission date, newest
// first, and downloads each result's PDF into the request's output
// directory.
type ArchiveRetriever struct {
	cfg    types.ArchiveConfig
	api    *retryablehttp.Client
	grab   *grab.Client
	logger log.Logger
	now    func() time.Time
}

// NewArchiveRetriever builds an archive retriever. API and PDF requests
// share one retrying HTTP client with cfg.Retries retries.
func NewArchiveRetriever(cfg types.ArchiveConfig, logger log.Logger) *ArchiveRetriever {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	logger = log.With(logger, "component", "retrieve", "retriever", sourceArxiv)

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.Retries
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 10 * time.Second
	rc.Logger = logging.Leveled{Logger: logger}
	if cfg.Timeout > 0 {
		rc.HTTPClient.Timeout = cfg.Timeout
	}

	gc := grab.NewClient()
	gc.UserAgent = cfg.UserAgent
	gc.HTTPClient = rc.StandardClient()

	return &ArchiveRetriever{
		cfg:    cfg,
		api:    rc,
		grab:   gc,
		logger: logger,
		now:    time.Now,
	}
}

// Retrieve pages through the search results until a short page or
// MaxResults entries have been seen. A failure on the first page fails the
// retrieval; later page failures end pagination with the papers collected
// so far.
func (r *ArchiveRetriever) Retrieve(ctx context.Context, req types.RetrievalRequest) ([]types.Paper, error) {
	if strings.TrimSpace(req.SearchQuery) == "" {
		return nil, errors.New("empty search query")
	}
	query := buildArchiveQuery(req.SearchQuery, req.Start, req.EndOrNow(r.now()))
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating output directory %s", req.OutputDir)
	}

	level.Info(r.logger).Log("msg", "starting retrieval", "query", query)

	var papers []types.Paper
	seen := 0
	for start := 0; seen < r.cfg.MaxResults; start += r.cfg.PageSize {
		if start > 0 && r.cfg.PageDelay > 0 {
			select {
			case <-ctx.Done():
				return papers, ctx.Err()
			case <-time.After(r.cfg.PageDelay):
			}
		}

		n := r.cfg.PageSize
		if rest := r.cfg.MaxResults - seen; rest < n {
			n = rest
		}
		entries, err := r.fetchPage(ctx, query, start, n)
		if err != nil {
			if start == 0 {
				return nil, err
			}
			level.Warn(r.logger).Log("msg", "stopping pagination", "start", start, "err", err)
			break
		}
		seen += len(entries)

		for _, entry := range entries {
			p, err := r.acquire(ctx, entry, req.OutputDir)
			if err != nil {
				level.Warn(r.logger).Log("msg", "dropping paper", "id", entry.ID, "err", err)
				continue
			}
			papers = append(papers, p)
		}

		if len(entries) < n {
			break
		}
	}

	if len(papers) == 0 {
		level.Warn(r.logger).Log("msg", "no papers were found for the given query")
	} else {
		level.Info(r.logger).Log("msg", "retrieval finished", "papers", len(papers))
	}
	return papers, nil
}

func buildArchiveQuery(search string, start, end time.Time) string {
	return "(" + strings.TrimSpace(search) + ") AND submittedDate:[" +
		start.Format(submittedDateLayout) + "0000 TO " +
		end.Format(submittedDateLayout) + "2359]"
}

func (r *ArchiveRetriever) fetchPage(ctx context.Context, query string, start, max int) ([]arxivEntry, error) {
	params := url.Values{}
	params.Set("search_query", query)
	params.Set("start", strconv.Itoa(start))
	params.Set("max_results", strconv.Itoa(max))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	httpReq.Header.Set("User-Agent", r.cfg.UserAgent)

	resp, err := r.api.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "arXiv API request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, errors.Wrap(err, "parsing arXiv response")
	}
	return feed.Entries, nil
}

// acquire downloads the entry's PDF unless it is already present and
// writes the metadata sidecar.
func (r *ArchiveRetriever) acquire(ctx context.Context, entry arxivEntry, outDir string) (types.Paper, error) {
	shortID := extractShortID(entry.ID)
	if shortID == "" {
		return types.Paper{}, errors.Errorf("unrecognized entry id %q", entry.ID)
	}
	title := collapseSpace(entry.Title)
	level.Info(r.logger).Log("msg", "found paper", "id", shortID, "title", title)

	authors := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		authors = append(authors, strings.TrimSpace(a.Name))
	}

	pdfPath := filepath.Join(outDir, types.Filename(shortID, title))
	paper := types.NewPaper(types.PaperFields{
		ShortID:   shortID,
		Title:     title,
		Authors:   authors,
		Published: publishedDate(entry.Published),
		Summary:   collapseSpace(entry.Summary),
		PDFPath:   pdfPath,
		Source:    sourceArxiv,
	})

	pdfURL := entry.pdfURL(shortID)
	if _, err := os.Stat(pdfPath); err == nil {
		level.Debug(r.logger).Log("msg", "reusing existing PDF", "path", pdfPath)
	} else {
		if err := r.download(ctx, pdfURL, pdfPath); err != nil {
			return types.Paper{}, err
		}
		level.Info(r.logger).Log("msg", "downloaded PDF", "path", pdfPath)
	}

	if _, err := os.Stat(SidecarPath(pdfPath)); err != nil {
		if err := writeSidecar(paper, pdfURL, r.now()); err != nil {
			level.Warn(r.logger).Log("msg", "writing metadata failed", "path", pdfPath, "err", err)
		}
	}
	return paper, nil
}

func (r *ArchiveRetriever) download(ctx context.Context, pdfURL, dst string) error {
	req, err := grab.NewRequest(dst, pdfURL)
	if err != nil {
		return errors.Wrap(err, "creating download request")
	}
	req = req.WithContext(ctx)
	req.NoResume = true
	req.HTTPRequest.Header.Set("Accept", "application/pdf")

	resp := r.grab.Do(req)
	if err := resp.Err(); err != nil {
		os.Remove(dst)
		return errors.Wrapf(err, "downloading %s", pdfURL)
	}
	return nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
	Links     []arxivLink   `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

// pdfURL returns the entry's PDF link, or the canonical PDF URL for shortID.
func (e arxivEntry) pdfURL(shortID string) string {
	for _, l := range e.Links {
		if l.Title == "pdf" || l.Type == "application/pdf" {
			return l.Href
		}
	}
	return arxivPDFBase + shortID
}

// extractShortID returns the identifier after "/abs/" in an entry id,
// keeping the version suffix: "http://arxiv.org/abs/2301.07041v1" gives
// "2301.07041v1", "http://arxiv.org/abs/hep-th/9901001v1" gives
// "hep-th/9901001v1".
func extractShortID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(idURL[idx+len(prefix):])
}

func publishedDate(s string) string {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(types.PublishedLayout)
	}
	if len(s) >= len(types.PublishedLayout) {
		return s[:len(types.PublishedLayout)]
	}
	return s
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
