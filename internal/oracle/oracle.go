// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package oracle queries the external relevance/summarization service. The
// oracle is a black box: it receives one text payload and returns free text.
package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/pdiddy/paper-digest/internal/retry"
)

// Backend performs a single oracle call. Implementations must not retry;
// Client applies the retry policy.
type Backend interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client sends prompts to a Backend with a bounded retry policy.
type Client struct {
	backend Backend
	policy  retry.Policy
	timeout time.Duration
	logger  log.Logger
}

// Options configures a Client.
type Options struct {
	// Retries is the total number of attempts per query.
	Retries int
	// Timeout bounds each attempt; zero means no per-attempt bound.
	Timeout time.Duration
	// RetryDelay is the fixed wait between attempts.
	RetryDelay time.Duration
}

// NewClient wraps backend with the retry policy described by opts.
func NewClient(backend Backend, opts Options, logger log.Logger) *Client {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	logger = log.With(logger, "component", "oracle", "backend", backend.Name())
	c := &Client{
		backend: backend,
		timeout: opts.Timeout,
		logger:  logger,
	}
	c.policy = retry.Policy{
		Attempts: opts.Retries,
		Delay:    opts.RetryDelay,
		OnFailure: func(attempt int, err error) {
			level.Error(logger).Log("msg", fmt.Sprintf("attempt %d failed querying oracle", attempt), "err", err)
		},
	}
	return c
}

// Query sends prompt to the oracle. It returns the response text and true on
// success, or "" and false once every attempt has failed. It never returns
// an error: failure is logged and signalled by the boolean.
func (c *Client) Query(ctx context.Context, prompt string) (string, bool) {
	var out string
	err := retry.Do(ctx, c.policy, func(ctx context.Context, _ int) error {
		attemptCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		resp, err := c.backend.Complete(attemptCtx, prompt)
		if err != nil {
			return err
		}
		out = resp
		return nil
	})
	if err != nil {
		level.Error(c.logger).Log("msg", "all retries failed for oracle", "err", err)
		return "", false
	}
	return out, true
}
