package drill

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/okian/trainer/internal/domain/contract"
)

const maxResponseBytes = 1 << 20

// Client talks to the JSON API as one learner. Its cookie jar carries the
// session, so the contract it puts applies to the answers it posts.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a learner client with its own session.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout, Jar: jar},
	}, nil
}

// Health checks /healthz.
func (c *Client) Health(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	return nil
}

// PutContract replaces the session contract.
func (c *Client) PutContract(ctx context.Context, ct contract.Contract) error {
	return c.do(ctx, http.MethodPut, "/api/contract", ct, nil)
}

// Question fetches a question for domain. A 503 is reported as ErrUnavailable.
func (c *Client) Question(ctx context.Context, domain string) (Question, error) {
	var q Question
	err := c.do(ctx, http.MethodGet, "/api/trainer/"+url.PathEscape(domain), nil, &q)
	return q, err
}

// Answer posts one answer.
func (c *Client) Answer(ctx context.Context, a Answer) (Outcome, error) {
	var out Outcome
	err := c.do(ctx, http.MethodPost, "/api/answers", a, &out)
	return out, err
}

// Summary reads the ledger totals at the session's price.
func (c *Client) Summary(ctx context.Context) (Summary, error) {
	var s Summary
	err := c.do(ctx, http.MethodGet, "/api/summary", nil, &s)
	return s, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s %s", ErrUnavailable, method, path)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: %s %s: %d %s", ErrStatus, method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}
