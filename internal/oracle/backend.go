// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"context"
	"net/http"
	"os"

	"github.com/pkg/errors"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// NewBackend builds the backend selected by cfg.Oracle.Backend.
func NewBackend(ctx context.Context, cfg types.Config) (Backend, error) {
	switch cfg.Oracle.Backend {
	case types.OracleService, "":
		return NewServiceBackend(cfg.GPTServiceHost, cfg.GPTServicePort, &http.Client{Timeout: cfg.Oracle.Timeout}), nil
	case types.OracleClaude:
		key := cfg.Oracle.APIKey
		if key == "" {
			key = os.Getenv("ANTHROPIC_API_KEY")
		}
		if key == "" {
			return nil, errors.New("claude oracle requires an API key (oracle.api_key or ANTHROPIC_API_KEY)")
		}
		return &ClaudeBackend{
			APIKey: key,
			Model:  cfg.Oracle.Model,
			Client: &http.Client{Timeout: cfg.Oracle.Timeout},
		}, nil
	case types.OracleGemini:
		key := cfg.Oracle.APIKey
		if key == "" {
			key = os.Getenv("GOOGLE_API_KEY")
		}
		return NewGeminiBackend(ctx, key, cfg.Oracle.Model)
	default:
		return nil, errors.Errorf("unknown oracle backend %q", cfg.Oracle.Backend)
	}
}
