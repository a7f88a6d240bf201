// Package encyclopedia reads page summaries from the Wikipedia REST API.
package encyclopedia

import (
	"context"
	"net/url"
	"strings"

	"github.com/okian/trainer/internal/adapters/lookup"
	"github.com/okian/trainer/internal/domain/question"
)

// DefaultURL is the German Wikipedia summary endpoint; the page title is appended.
const DefaultURL = "https://de.wikipedia.org/api/rest_v1/page/summary/"

const source = "encyclopedia"

type summary struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
}

// Client fetches summaries.
type Client struct {
	fetcher lookup.Fetcher
	baseURL string
}

// New returns an encyclopedia client. An empty baseURL uses DefaultURL.
func New(f lookup.Fetcher, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{fetcher: f, baseURL: baseURL}
}

// Summary returns the canonical title and plain-text extract of title.
func (c *Client) Summary(ctx context.Context, title string) (question.Page, error) {
	var s summary
	if err := c.fetcher.GetJSON(ctx, source, c.baseURL+url.PathEscape(title), &s); err != nil {
		return question.Page{}, err
	}
	return question.Page{Title: s.Title, Extract: s.Extract}, nil
}
