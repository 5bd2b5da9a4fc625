// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"context"
	"net/http"

	"github.com/pdiddy/paper-digest/internal/httputil"
)

// ServiceBackend calls the oracle microservice: POST /query {query} → {output}.
type ServiceBackend struct {
	URL    string
	Client *http.Client
}

// NewServiceBackend returns a backend for the microservice at host:port.
func NewServiceBackend(host string, port int, client *http.Client) *ServiceBackend {
	return &ServiceBackend{
		URL:    httputil.ServiceURL(host, port, "/query"),
		Client: client,
	}
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Output string `json:"output"`
}

func (b *ServiceBackend) Name() string { return "service" }

// Complete posts prompt and returns the "output" field. A missing field
// yields an empty string, which callers treat as no response.
func (b *ServiceBackend) Complete(ctx context.Context, prompt string) (string, error) {
	var resp queryResponse
	if err := httputil.PostJSON(ctx, b.Client, b.URL, queryRequest{Query: prompt}, &resp); err != nil {
		return "", err
	}
	return resp.Output, nil
}
