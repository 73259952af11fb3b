// Package labapi is the HTTP client for the lab database's REST collaborator.
//
// The backend owns all real logic (filtering, joins, aggregation); this
// client does transport, error-message extraction, and response-shape
// normalization so the rest of the console sees canonical records only.
package labapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-labadmin/pkg/record"
)

// DefaultTimeout is the recommended client-side cap per call; the server
// contract does not require it.
const DefaultTimeout = 10 * time.Second

// Option customises the client configuration.
type Option func(*Client)

// WithHTTPClient injects a custom HTTP client, e.g. for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithTimeout overrides the default per-call timeout. Ignored when a custom
// HTTP client is supplied.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// Client talks to the REST API rooted at baseURL (typically ".../api").
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
}

// New constructs a client. baseURL is required.
func New(baseURL string, options ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("labapi: base URL is required")
	}
	c := &Client{base: trimmed, timeout: DefaultTimeout}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c, nil
}

// Records fetches all rows of a table. A non-array payload normalizes to an
// empty set rather than an error.
func (c *Client) Records(ctx context.Context, table string) ([]record.Record, error) {
	payload, err := c.send(ctx, http.MethodGet, "/"+url.PathEscape(table), nil, "Failed to fetch table")
	if err != nil {
		return nil, err
	}
	return recordsFromPayload(payload, nil), nil
}

// Create posts a new row to a table.
func (c *Client) Create(ctx context.Context, table string, rec record.Record) error {
	_, err := c.send(ctx, http.MethodPost, "/"+url.PathEscape(table), rec, "Failed to create row")
	return err
}

// Update replaces a row identified by its primary-key value.
func (c *Client) Update(ctx context.Context, table, id string, rec record.Record) error {
	_, err := c.send(ctx, http.MethodPut, "/"+url.PathEscape(table)+"/"+url.PathEscape(id), rec, "Failed to update row")
	return err
}

// Delete removes a row identified by its primary-key value.
func (c *Client) Delete(ctx context.Context, table, id string) error {
	_, err := c.send(ctx, http.MethodDelete, "/"+url.PathEscape(table)+"/"+url.PathEscape(id), nil, "Failed to delete row")
	return err
}

// send performs one API call and decodes the JSON payload into a generic
// value. Every failure comes back as *Error carrying a single human-readable
// message: the server's message field when present, the transport error
// otherwise, the per-operation fallback as a last resort.
func (c *Client) send(ctx context.Context, method, path string, body any, fallback string) (any, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Message: fallback}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, &Error{Message: messageOrFallback(err.Error(), fallback)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Message: messageOrFallback(err.Error(), fallback)}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			Status:  resp.StatusCode,
			Message: messageOrFallback(serverMessage(raw), fallback),
		}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		// Unparseable success bodies count as shape errors: neutral result.
		return nil, nil
	}
	return payload, nil
}

// recordsFromPayload turns a generic array payload into records, optionally
// normalizing backend key variants. Non-arrays and non-object items are
// dropped, never propagated as a crash.
func recordsFromPayload(payload any, aliases record.Aliases) []record.Record {
	items, ok := payload.([]any)
	if !ok {
		return []record.Record{}
	}
	out := make([]record.Record, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if aliases == nil {
			out = append(out, record.Record(obj))
			continue
		}
		out = append(out, record.Normalize(obj, aliases))
	}
	return out
}
