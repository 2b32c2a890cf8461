// Package backend is the portal's client for the clinic REST API. Every call
// carries the caller's bearer token and returns errors classified by
// package apperr so handlers can decide what the user sees.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/apperr"
)

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the clinic backend under /api.
type Client struct {
	http   *resty.Client
	logger zerolog.Logger
}

// New creates a backend client. Requests are never retried here; the only
// automatic retry in the portal is the polling schedule.
func New(opts Options, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:   client,
		logger: logger.With().Str("component", "backend").Logger(),
	}
}

func (c *Client) request(ctx context.Context, token string) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if token != "" {
		req.SetAuthToken(token)
	}
	return req
}

// do executes req and classifies the outcome. out may be nil.
func (c *Client) do(req *resty.Request, method, path string, out interface{}) error {
	if out != nil {
		req.SetResult(out)
	}
	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("backend call failed")
		return apperr.Unavailable(err)
	}

	status := resp.StatusCode()
	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Msg("backend call")

	switch {
	case status == http.StatusUnauthorized:
		return apperr.ErrUnauthorized
	case status == http.StatusForbidden:
		return apperr.ErrForbidden
	case resp.IsError():
		return &apperr.BusinessError{Status: status, Message: errorMessage(resp.Body())}
	}
	return nil
}

// errorMessage pulls a human-readable message out of an error body. The
// backend answers with {"message": ...}, {"error": ...} or plain text.
func errorMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
		return ""
	}
	if strings.HasPrefix(trimmed, "<") {
		// HTML error page from a proxy; nothing useful to show.
		return ""
	}
	return trimmed
}

func idPath(format string, id int64) string {
	return fmt.Sprintf(format, id)
}
