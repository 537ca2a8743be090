// Package api talks to the items REST backend. It does one HTTP round trip
// per call and never retries; callers decide what to do with failures.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/idilsaglam/itemdesk/internal/model"
)

const (
	collectionPath = "/items/"
	healthPath     = "/health"

	maxErrorBody = 64 << 10
)

// DeleteResult is the confirmation body returned by DELETE /items/{id}.
type DeleteResult struct {
	Message string `json:"message"`
}

// Health is the body returned by GET /health.
type Health struct {
	Status string `json:"status"`
}

// Client is a thin JSON client for the items resource.
type Client struct {
	base *url.URL
	http *http.Client
	log  *slog.Logger
}

// Option tunes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets a per-request timeout. The installed *http.Client is
// copied first, so a shared client is left as it was.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New builds a Client rooted at baseURL, which must include the API prefix
// (e.g. http://localhost:8000/api).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q: missing host", baseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	c := &Client{
		base: u,
		http: &http.Client{Timeout: 10 * time.Second},
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.base.String() }

func itemPath(id int) string { return "/items/" + strconv.Itoa(id) }

// ListAll fetches every item, in server order.
func (c *Client) ListAll(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	if err := c.do(ctx, http.MethodGet, collectionPath, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	c.warnUnparsed(items...)
	return items, nil
}

func (c *Client) warnUnparsed(items ...model.Item) {
	for _, it := range items {
		if it.CreatedAt.Unparsed() {
			c.log.Warn("unreadable created_at", "id", it.ID, "value", it.CreatedAt.Raw)
		}
	}
}

// GetOne fetches a single item.
func (c *Client) GetOne(ctx context.Context, id int) (model.Item, error) {
	var it model.Item
	err := c.do(ctx, http.MethodGet, itemPath(id), nil, &it)
	c.warnUnparsed(it)
	return it, err
}

// Create posts a draft and returns the server's item.
func (c *Client) Create(ctx context.Context, d model.Draft) (model.Item, error) {
	var it model.Item
	err := c.do(ctx, http.MethodPost, collectionPath, d, &it)
	return it, err
}

// Update replaces the title/description of an existing item.
func (c *Client) Update(ctx context.Context, id int, d model.Draft) (model.Item, error) {
	var it model.Item
	err := c.do(ctx, http.MethodPut, itemPath(id), d, &it)
	return it, err
}

// Delete removes an item.
func (c *Client) Delete(ctx context.Context, id int) (DeleteResult, error) {
	var res DeleteResult
	err := c.do(ctx, http.MethodDelete, itemPath(id), nil, &res)
	return res, err
}

// Health calls the diagnostic endpoint.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	err := c.do(ctx, http.MethodGet, healthPath, nil, &h)
	return h, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Message: "encode request", Err: err}
		}
		rd = bytes.NewReader(b)
	}

	u := *c.base
	u.Path = c.base.Path + path
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return &Error{Message: "build request", Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed",
			"method", method, "path", u.Path, "request_id", reqID, "err", err)
		return &Error{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("request",
		"method", method, "path", u.Path, "status", resp.StatusCode,
		"duration", time.Since(start), "request_id", reqID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode, Message: errorMessage(resp)}
		c.log.Warn("request rejected",
			"method", method, "path", u.Path, "status", resp.StatusCode,
			"request_id", reqID, "message", apiErr.Message)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: "decode response", Err: err}
	}
	return nil
}

// errorMessage pulls the human-readable part of an error body. FastAPI sends
// {"detail": "..."} for HTTPException and {"detail": [...]} for validation.
func errorMessage(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(b, &payload); err == nil && len(payload.Detail) > 0 && string(payload.Detail) != "null" {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			if s != "" {
				return s
			}
		} else {
			var buf bytes.Buffer
			if json.Compact(&buf, payload.Detail) == nil {
				return buf.String()
			}
		}
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return "unexpected status"
}
