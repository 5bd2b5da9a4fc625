// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify sends the run digest through the email microservice.
package notify

import (
	"context"
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/pdiddy/paper-digest/internal/httputil"
)

// DefaultTimeout bounds the single send request.
const DefaultTimeout = 10 * time.Second

// Client posts messages to the email microservice: POST /send
// {email, subject, message}. A send is attempted once; failures are logged
// and returned, never retried.
type Client struct {
	url    string
	http   *http.Client
	logger log.Logger
}

// New returns a client for the email service at host:port. A zero timeout
// selects DefaultTimeout.
func New(host string, port int, timeout time.Duration, logger log.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Client{
		url:    httputil.ServiceURL(host, port, "/send"),
		http:   &http.Client{Timeout: timeout},
		logger: log.With(logger, "component", "notify"),
	}
}

type sendRequest struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Send delivers one message to one recipient.
func (c *Client) Send(ctx context.Context, to, subject, body string) error {
	err := httputil.PostJSON(ctx, c.http, c.url, sendRequest{Email: to, Subject: subject, Message: body}, nil)
	if err != nil {
		err = errors.Wrap(err, "sending email")
		level.Error(c.logger).Log("msg", "error sending email", "to", to, "err", err)
		return err
	}
	level.Info(c.logger).Log("msg", "email sent successfully", "to", to)
	return nil
}
