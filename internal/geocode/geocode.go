// Package geocode turns a free-text location query into address
// suggestions via a Places-style text-search endpoint. Suggestions are
// a typing aid, never required data, so every failure mode collapses to
// an empty list rather than an error the caller has to handle.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Suggestion is one address candidate for a query.
type Suggestion struct {
	FormattedAddress string `json:"formatted_address"`
	PlaceID          string `json:"place_id"`
}

// Client queries a text-search geocoding endpoint.
type Client struct {
	baseURL string
	apiKey  string
	log     *slog.Logger
	http    *http.Client
}

// New builds a Client for the given endpoint, e.g.
// "https://maps.googleapis.com/maps/api/place/textsearch".
func New(baseURL, apiKey string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		log:     log,
		http:    &http.Client{Timeout: timeout},
	}
}

// Lookup returns suggestions for query, best effort. A blank query
// skips the network entirely; transport or decode failures are logged
// and yield an empty list.
func (c *Client) Lookup(ctx context.Context, query string) []Suggestion {
	if strings.TrimSpace(query) == "" {
		return []Suggestion{}
	}

	params := url.Values{}
	params.Set("query", query)
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	endpoint := fmt.Sprintf("%s/json?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.log.Warn("geocode request build failed", "error", err)
		return []Suggestion{}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("geocode lookup failed", "query", query, "error", err)
		return []Suggestion{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("geocode lookup rejected", "query", query, "status", resp.StatusCode)
		return []Suggestion{}
	}

	var body struct {
		Results []Suggestion `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.log.Warn("geocode response unreadable", "query", query, "error", err)
		return []Suggestion{}
	}
	if body.Results == nil {
		return []Suggestion{}
	}
	return body.Results
}
