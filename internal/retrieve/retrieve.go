// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve produces the candidate papers of a run: their metadata
// plus a local PDF. Two implementations exist. ArchiveRetriever talks to the
// arXiv API directly; ServiceRetriever delegates to the paper retrieval
// microservice.
package retrieve

import (
	"context"

	"github.com/go-kit/log"
	"github.com/pkg/errors"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Retriever returns the papers matching req. An error means the retrieval
// as a whole failed; individual papers that could not be fetched are
// dropped and logged instead.
type Retriever interface {
	Retrieve(ctx context.Context, req types.RetrievalRequest) ([]types.Paper, error)
}

// New returns the retriever selected by cfg.Retriever.
func New(cfg types.Config, logger log.Logger) (Retriever, error) {
	switch cfg.Retriever {
	case types.RetrieverArchive:
		return NewArchiveRetriever(cfg.Archive, logger), nil
	case types.RetrieverService, "":
		return NewServiceRetriever(cfg.PaperRetrievalServiceHost, cfg.PaperRetrievalServicePort, cfg.Retrieval, logger), nil
	default:
		return nil, errors.Errorf("unknown retriever %q", cfg.Retriever)
	}
}
