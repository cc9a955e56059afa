// Package api is the HTTP client for the remote Drivers Log API.
// The remote contract is a small set of PHP endpoints authenticated by an
// apikey query parameter; every mutating call goes through the unified
// trip.php endpoint with a tagged JSON envelope. This package only moves
// data — no business rules live here.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ResultKind is the tagged outcome decoded from the response envelope's
// data.code field. Only the exact strings "success" and "invalid" are
// recognized; everything else (including "Failure") is a failure.
type ResultKind string

const (
	ResultSuccess ResultKind = "success"
	ResultInvalid ResultKind = "invalid"
	ResultFailure ResultKind = "failure"
)

// kindOf maps a raw data.code value onto a ResultKind.
func kindOf(code string) ResultKind {
	switch code {
	case "success":
		return ResultSuccess
	case "invalid":
		return ResultInvalid
	default:
		return ResultFailure
	}
}

// Client talks to the remote API. Construct with New; set the apikey with
// SetAPIKey once login succeeds (or from the cached token).
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New returns a Client for the given base URL (e.g.
// "https://api.example.com/driverslog"). timeout bounds every request.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// SetAPIKey sets the apikey appended to every subsequent request.
func (c *Client) SetAPIKey(key string) {
	c.apiKey = key
}

// endpoint builds the full URL for path, carrying the apikey and any
// extra query parameters.
func (c *Client) endpoint(path string, extra url.Values) string {
	q := url.Values{}
	if c.apiKey != "" {
		q.Set("apikey", c.apiKey)
	}
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u := c.baseURL + path
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// doJSON performs a request and decodes the JSON response body into out.
// A non-2xx status or an undecodable body maps to domain.ErrRemote via
// the caller's wrapping; this helper reports the raw cause.
func (c *Client) doJSON(ctx context.Context, method, rawURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
