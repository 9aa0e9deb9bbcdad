// Package eastmoney provides a client for Eastmoney fund data: holdings
// disclosures, NAV history, and the fund directory.
package eastmoney

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/navcast/internal/common"
	"github.com/bobmcallan/navcast/internal/interfaces"
)

const (
	DefaultF10BaseURL = "http://fundf10.eastmoney.com"
	DefaultAPIBaseURL = "http://api.fund.eastmoney.com"
	DefaultDirBaseURL = "http://fund.eastmoney.com"
	DefaultTimeout    = 8 * time.Second
	DefaultRateLimit  = 5 // requests per second

	userAgent = "Mozilla/5.0"
)

// Client implements the FundDataClient interface
type Client struct {
	f10BaseURL string
	apiBaseURL string
	dirBaseURL string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	now        func() time.Time // injectable clock for testing
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithF10BaseURL sets the disclosures base URL
func WithF10BaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.f10BaseURL = baseURL
	}
}

// WithAPIBaseURL sets the NAV API base URL
func WithAPIBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.apiBaseURL = baseURL
	}
}

// WithDirBaseURL sets the fund directory base URL
func WithDirBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.dirBaseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Eastmoney client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		f10BaseURL: DefaultF10BaseURL,
		apiBaseURL: DefaultAPIBaseURL,
		dirBaseURL: DefaultDirBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("eastmoney API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request and returns the raw body.
// referer is optional; the NAV API rejects requests without one.
func (c *Client) get(ctx context.Context, rawURL, referer string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	c.logger.Debug().Str("url", rawURL).Msg("Eastmoney request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   rawURL,
		}
	}

	return io.ReadAll(resp.Body)
}

// Ensure Client implements FundDataClient
var _ interfaces.FundDataClient = (*Client)(nil)
