// Package transport fetches feed documents over HTTP.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var ErrStatus = errors.New("unexpected HTTP status")

const maxBodySize = 10 << 20

type Response struct {
	Status int
	Body   []byte
}

type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewFetcher creates a fetcher with a session-wide timeout. A rateLimit of
// zero disables request throttling.
func NewFetcher(timeout time.Duration, userAgent string, rateLimit float64) *Fetcher {
	limit := rate.Inf
	if rateLimit > 0 {
		limit = rate.Limit(rateLimit)
	}

	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: userAgent,
	}
}

// Fetch issues a GET request. Statuses outside [200,300) are reported as
// ErrStatus together with the response.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, params url.Values) (Response, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf("rate limiter: %w", err)
	}

	target, err := url.Parse(rawURL)
	if err != nil {
		return Response{}, fmt.Errorf("failed to parse URL: %w", err)
	}
	if len(params) > 0 {
		target.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	result := Response{Status: resp.StatusCode}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return result, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	result.Body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return result, fmt.Errorf("failed to read response body: %w", err)
	}

	return result, nil
}

// SplitSourceURL separates a configured source URL into its cache key (the
// URL without query string) and the query parameters sent with each request.
func SplitSourceURL(raw string) (string, url.Values) {
	key, query, found := strings.Cut(raw, "?")
	if !found {
		return key, nil
	}

	params, err := url.ParseQuery(query)
	if err != nil {
		return key, nil
	}
	return key, params
}
