// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retry implements the bounded retry policy shared by every
// external-call component: a fixed number of attempts with a fixed delay
// between them.
package retry

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrExhausted is returned (wrapped) when every attempt of a policy failed.
var ErrExhausted = errors.New("all attempts failed")

// Policy bounds a retried operation.
type Policy struct {
	// Attempts is the total number of attempts, including the first.
	// Values below 1 are treated as 1.
	Attempts int

	// Delay is the fixed wait between consecutive attempts. No wait follows
	// the final attempt.
	Delay time.Duration

	// OnFailure, if set, is called after every failed attempt with the
	// 1-based attempt number.
	OnFailure func(attempt int, err error)
}

// Do runs op until it succeeds or the policy's attempts are used up. op
// receives the 1-based attempt number. On exhaustion Do returns an error
// wrapping ErrExhausted with the last failure in the message. If ctx is
// cancelled while waiting between attempts, ctx.Err() is returned.
func Do(ctx context.Context, p Policy, op func(ctx context.Context, attempt int) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 && p.Delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Delay):
			}
		}

		err := op(ctx, attempt)
		if err == nil {
			return nil
		}
		lastErr = err
		if p.OnFailure != nil {
			p.OnFailure(attempt, err)
		}
	}
	return errors.Wrapf(ErrExhausted, "after %d attempts: %v", attempts, lastErr)
}
