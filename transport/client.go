// Package transport owns the HTTP client used to call the remote API:
// base URL assembly, bearer authorization, TLS verification policy,
// per-call timeout, and an optional client-side rate limit. The bridge
// above it never touches net/http directly.
package transport

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

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/apibridge/internal/tlsutil"
)

// Config configures the transport client.
type Config struct {
	BaseURL   string
	Token     string
	VerifySSL bool
	Timeout   time.Duration
	// RateLimit caps outbound requests per second. Zero disables limiting.
	RateLimit float64
	Burst     int
}

// Response is the transport-level outcome of one request. A non-2xx status
// is not a transport error; callers decide how to treat it.
type Response struct {
	Status int
	Body   []byte
}

// IsSuccess reports whether the response carries a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}

// Client issues authorized HTTP requests against one base URL.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a transport client for the given base URL and token.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil || cfg.BaseURL == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    tlsutil.HTTPClient(cfg.VerifySSL, timeout),
		limiter: limiter,
		logger:  logger.With(zap.String("component", "transport")),
	}, nil
}

// Send issues exactly one HTTP request. The path arrives with placeholders
// already substituted; escaping happens here when the URL is assembled.
// Bodies are JSON-encoded and only sent for body-bearing methods.
func (c *Client) Send(ctx context.Context, method Method, path string, query url.Values, body any) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", path, err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil && method.AcceptsBody() {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method.String(), u.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", method.String()),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	c.logger.Debug("request completed",
		zap.String("method", method.String()),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	return &Response{Status: resp.StatusCode, Body: data}, nil
}
