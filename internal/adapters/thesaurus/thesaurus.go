// Package thesaurus queries an OpenThesaurus-compatible synonym service.
package thesaurus

import (
	"context"
	"net/url"
	"strings"

	"github.com/okian/trainer/internal/adapters/lookup"
)

// DefaultURL is the public OpenThesaurus search endpoint.
const DefaultURL = "https://www.openthesaurus.de/synonyme/search"

const source = "thesaurus"

type response struct {
	Synsets []struct {
		Terms []struct {
			Term string `json:"term"`
		} `json:"terms"`
	} `json:"synsets"`
}

// Client resolves German synonyms.
type Client struct {
	fetcher lookup.Fetcher
	baseURL string
}

// New returns a thesaurus client. An empty baseURL uses DefaultURL.
func New(f lookup.Fetcher, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{fetcher: f, baseURL: baseURL}
}

// Synonyms returns the terms of every synset containing word, in response
// order without repeats.
func (c *Client) Synonyms(ctx context.Context, word string) ([]string, error) {
	q := url.Values{}
	q.Set("q", word)
	q.Set("format", "application/json")

	var resp response
	if err := c.fetcher.GetJSON(ctx, source, c.baseURL+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	var terms []string
	seen := make(map[string]struct{})
	for _, set := range resp.Synsets {
		for _, t := range set.Terms {
			term := strings.TrimSpace(t.Term)
			if term == "" {
				continue
			}
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			terms = append(terms, term)
		}
	}
	return terms, nil
}
