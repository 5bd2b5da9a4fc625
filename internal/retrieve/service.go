// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/internal/retry"
	"github.com/pdiddy/paper-digest/pkg/types"
)

const (
	sourceService = "service"

	// endNow is sent as end_date when the window is open-ended.
	endNow = "NOW"
)

// ServiceRetriever asks the paper retrieval microservice for the papers in
// one batch: POST /retrieve_papers.
type ServiceRetriever struct {
	url    string
	client *http.Client
	policy retry.Policy
	logger log.Logger
	now    func() time.Time
}

// NewServiceRetriever returns a retriever for the microservice at
// host:port. Each attempt is bounded by cfg.Timeout; cfg.Retries attempts
// are made with cfg.RetryDelay between them.
func NewServiceRetriever(host string, port int, cfg types.RetrievalConfig, logger log.Logger) *ServiceRetriever {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	logger = log.With(logger, "component", "retrieve", "retriever", sourceService)
	return &ServiceRetriever{
		url:    httputil.ServiceURL(host, port, "/retrieve_papers"),
		client: &http.Client{Timeout: cfg.Timeout},
		policy: retry.Policy{
			Attempts: cfg.Retries,
			Delay:    cfg.RetryDelay,
			OnFailure: func(attempt int, err error) {
				level.Error(logger).Log("msg", "retrieval attempt failed", "attempt", attempt, "err", err)
			},
		},
		logger: logger,
		now:    time.Now,
	}
}

type retrieveRequest struct {
	SearchQuery string `json:"search_query"`
	OutputDir   string `json:"output_dir"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type retrieveResponse struct {
	PapersMetadata []paperMetadata `json:"papers_metadata"`
}

type paperMetadata struct {
	FilePath  string   `json:"file_path"`
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Summary   string   `json:"summary"`
	Published string   `json:"published,omitempty"`
	ShortID   string   `json:"short_id,omitempty"`
}

// Retrieve calls the microservice under the retry policy. Papers without a
// published date are stamped with the run date.
func (s *ServiceRetriever) Retrieve(ctx context.Context, req types.RetrievalRequest) ([]types.Paper, error) {
	body := retrieveRequest{
		SearchQuery: req.SearchQuery,
		OutputDir:   req.OutputDir,
		StartDate:   req.Start.Format(types.PublishedLayout),
		EndDate:     endNow,
	}
	if !req.End.IsZero() {
		body.EndDate = req.End.Format(types.PublishedLayout)
	}

	var resp retrieveResponse
	err := retry.Do(ctx, s.policy, func(ctx context.Context, _ int) error {
		resp = retrieveResponse{}
		return httputil.PostJSON(ctx, s.client, s.url, body, &resp)
	})
	if err != nil {
		level.Error(s.logger).Log("msg", "all retries failed for paper retrieval service", "err", err)
		return nil, errors.Wrap(err, "paper retrieval service")
	}

	runDate := s.now().Format(types.PublishedLayout)
	papers := make([]types.Paper, 0, len(resp.PapersMetadata))
	for _, m := range resp.PapersMetadata {
		shortID, published := m.ShortID, m.Published
		if shortID == "" || published == "" {
			if known, err := readSidecar(m.FilePath); err == nil {
				shortID = lo.Ternary(shortID == "", known.ShortID(), shortID)
				published = lo.Ternary(published == "", known.Published(), published)
			}
		}
		if published == "" {
			published = runDate
		}
		papers = append(papers, types.NewPaper(types.PaperFields{
			ShortID:   shortID,
			Title:     m.Title,
			Authors:   m.Authors,
			Published: published,
			Summary:   m.Summary,
			PDFPath:   m.FilePath,
			Source:    sourceService,
		}))
	}
	level.Info(s.logger).Log("msg", "retrieval finished", "papers", len(papers))
	return papers, nil
}
