// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the microservice clients.
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// maxErrorBody caps how much of a failed response body is quoted in errors.
const maxErrorBody = 512

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http response did not indicate success: %s", e.Status)
	}
	return fmt.Sprintf("http response did not indicate success: %s: %s", e.Status, e.Body)
}

// EnsureSuccess returns a *StatusError when resp does not carry a 2xx status.
// The body is read (up to a limit) for the error message but not closed.
func EnsureSuccess(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(bytes.TrimSpace(b)),
	}
}

// PostJSON marshals in, POSTs it to url, and decodes a JSON response into
// out. A nil out skips decoding; the body is always drained and closed.
func PostJSON(ctx context.Context, client *http.Client, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "marshaling request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "POST %s", url)
	}
	defer resp.Body.Close()

	if err := EnsureSuccess(resp); err != nil {
		return errors.Wrapf(err, "POST %s", url)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decoding response from %s", url)
	}
	return nil
}

// ServiceURL builds "http://host:port/path".
func ServiceURL(host string, port int, path string) string {
	return fmt.Sprintf("http://%s:%d%s", host, port, path)
}
