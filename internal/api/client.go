// Package api is the typed client for the mocksys REST backend.
//
// Every request goes through one door: JSON in, JSON out, bearer token
// attached when a session exists, X-Request-Id for tracing. Non-2xx
// responses decode into *Error so screens can surface the server's own
// error detail verbatim and overlay per-field messages on forms.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const maxResponseBytes = 1 << 20

// TokenSource supplies the current bearer token, or "" when logged out.
// Absence of a token simply omits the Authorization header.
type TokenSource func() string

// Client talks to one backend instance.
type Client struct {
	baseURL string
	httpc   *http.Client
	token   TokenSource
}

// NewClient returns a client for baseURL. Timeouts are the caller's
// concern: pass a context with a deadline per request.
func NewClient(baseURL string, token TokenSource) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
		token:   token,
	}
}

// Error is the backend's error envelope plus the HTTP status.
type Error struct {
	Status int
	Detail string            // the response body's "error" field, verbatim
	Fields map[string]string // first message per field from "errors"
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api: unexpected status %d", e.Status)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}

func decodeError(status int, body []byte) *Error {
	apiErr := &Error{Status: status}
	var envelope struct {
		Error  string              `json:"error"`
		Errors map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Detail = envelope.Error
		if len(envelope.Errors) > 0 {
			apiErr.Fields = make(map[string]string, len(envelope.Errors))
			for field, msgs := range envelope.Errors {
				if len(msgs) > 0 {
					apiErr.Fields[field] = msgs[0]
				}
			}
		}
	}
	return apiErr
}

func pathEscape(segment string) string {
	return url.PathEscape(segment)
}
