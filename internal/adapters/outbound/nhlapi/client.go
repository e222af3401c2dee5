package nhlapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/charleschow/nhl-companion/internal/telemetry"
)

const maxErrorBody = 64 << 10

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit sets the client-side token bucket. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient builds a backend client. token may be empty, in which case
// no Authorization header is sent.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(10), 10),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// getJSON performs a GET and decodes a 2xx body into out. Every failure
// is an *APIError.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return &APIError{Kind: ErrNetwork, Path: path, Err: fmt.Errorf("rate limit wait: %w", err)}
	}
	telemetry.Metrics.RateLimiterWait.Since(waitStart)

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &APIError{Kind: ErrNetwork, Path: path, Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	telemetry.Metrics.APIRequests.Inc()
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.Metrics.APIErrors.Inc()
		return &APIError{Kind: ErrNetwork, Path: path, Err: fmt.Errorf("http do: %w", err)}
	}
	defer resp.Body.Close()

	telemetry.Debugf("nhlapi: GET %s -> %d (%s)", path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		telemetry.Metrics.APIErrors.Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Kind:       classify(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Path:       path,
			Detail:     detailOf(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		telemetry.Metrics.APIErrors.Inc()
		return &APIError{Kind: ErrUnknownHTTP, StatusCode: resp.StatusCode, Path: path, Detail: "Malformed response from API", Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func detailOf(body []byte) string {
	var e struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &e); err != nil || len(e.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Detail, &s); err == nil {
		return s
	}
	// FastAPI validation errors carry a list; surface it raw.
	return string(e.Detail)
}
