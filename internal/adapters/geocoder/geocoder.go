// Package geocoder resolves place names through a Nominatim search endpoint.
package geocoder

import (
	"context"
	"net/url"

	"github.com/okian/trainer/internal/adapters/lookup"
)

// DefaultURL is the public Nominatim search endpoint.
const DefaultURL = "https://nominatim.openstreetmap.org/search"

const source = "geocoder"

type place struct {
	DisplayName string `json:"display_name"`
}

// Client geocodes free-form queries.
type Client struct {
	fetcher lookup.Fetcher
	baseURL string
}

// New returns a geocoder client. An empty baseURL uses DefaultURL.
func New(f lookup.Fetcher, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{fetcher: f, baseURL: baseURL}
}

// Geocode returns the formatted address of the best match, or "" when
// nothing matched.
func (c *Client) Geocode(ctx context.Context, query string) (string, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")

	var places []place
	if err := c.fetcher.GetJSON(ctx, source, c.baseURL+"?"+q.Encode(), &places); err != nil {
		return "", err
	}
	if len(places) == 0 {
		return "", nil
	}
	return places[0].DisplayName, nil
}
