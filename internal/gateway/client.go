package gateway

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/macrolens/internal/logger"
	"github.com/ppiankov/macrolens/internal/model"
	"github.com/ppiankov/macrolens/internal/util"
	"github.com/ppiankov/macrolens/internal/worker"
)

const fetchMaxRetries = 3

// fetchSleepFunc is swapped out in tests
var fetchSleepFunc = time.Sleep

// ErrDisallowed is returned when robots.txt forbids a request
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Client performs GET requests against data-source APIs with retries,
// per-host rate limiting and optional robots.txt compliance
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	limiter    *worker.Limiter
	robots     *util.RobotsChecker
}

// NewClient creates a new Client with the given configuration
func NewClient(timeout time.Duration, userAgent string, maxBytes int64, insecure bool, httpProxy, httpsProxy, noProxy string) *Client {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(httpProxy, httpsProxy, noProxy),
	}
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via config
	}

	if maxBytes <= 0 {
		maxBytes = 5_000_000
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
}

// NewClientFromConfig builds a client with rate limiting and, when enabled, robots.txt checks
func NewClientFromConfig(h model.HTTPConfig, rl model.RateLimitingConfig) *Client {
	c := NewClient(h.Timeout, h.UserAgent, h.MaxBodyBytes, h.InsecureTLS, h.HTTPProxy, h.HTTPSProxy, h.NoProxy)
	c.limiter = worker.NewLimiter(rl.RequestsPerSecond, rl.BurstSize)
	if h.RespectRobots {
		c.robots = util.NewRobotsChecker(c.httpClient, h.UserAgent, h.Timeout)
	}
	return c
}

// WithLimiter sets the per-host rate limiter
func (c *Client) WithLimiter(l *worker.Limiter) *Client {
	c.limiter = l
	return c
}

// WithRobots enables robots.txt checks
func (c *Client) WithRobots(r *util.RobotsChecker) *Client {
	c.robots = r
	return c
}

// Get fetches rawURL once and returns the body
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	var crawlDelay time.Duration
	if c.robots != nil {
		allowed, delay, err := c.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
		}
		crawlDelay = delay
	}

	if c.limiter != nil {
		if err := c.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

// GetWithRetry retries transient failures with exponential backoff
func (c *Client) GetWithRetry(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < fetchMaxRetries; attempt++ {
		body, err := c.Get(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !isRetryableFetchError(err) || ctx.Err() != nil {
			return nil, err
		}

		if attempt < fetchMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			logger.Log.WithField("url", rawURL).WithField("attempt", attempt+1).Debugf("retrying after %v: %v", backoff, err)
			fetchSleepFunc(backoff)
		}
	}
	return nil, lastErr
}

// isRetryableFetchError reports transient failures: 5xx, 429 and transport errors
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, "unexpected status: "); ok {
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return false
		}
		code, convErr := strconv.Atoi(fields[0])
		if convErr != nil {
			return false
		}
		return code == http.StatusTooManyRequests || (code >= 500 && code < 600)
	}

	return strings.HasPrefix(msg, "fetch: ")
}
