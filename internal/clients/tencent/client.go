// Package tencent provides a client for the qt.gtimg.cn live quote feed.
//
// The feed answers GET /q=<key>,<key>,... with one GBK-encoded line per key:
//
//	v_sh600519="1~贵州茅台~600519~1700.00~1690.00~...";
//
// Tilde-delimited fields: display name at index 1, latest price at index 3,
// previous close at index 4, and (when present) the feed's own percent
// change at index 32.
package tencent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/navcast/internal/common"
	"github.com/bobmcallan/navcast/internal/interfaces"
	"github.com/bobmcallan/navcast/internal/models"
	"github.com/bobmcallan/navcast/internal/securities"
)

const (
	DefaultBaseURL   = "http://qt.gtimg.cn"
	DefaultTimeout   = 5 * time.Second
	DefaultRateLimit = 10 // requests per second
	DefaultBatchSize = 80 // provider keys per request, upstream URL limit

	userAgent = "Mozilla/5.0"
)

// Client implements the QuoteClient interface against the Tencent feed.
type Client struct {
	baseURL    string
	batchSize  int
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	fallback   *Fallback
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
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

// WithBatchSize sets the number of provider keys per request
func WithBatchSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithFallback sets the last-known-good slot, shared or pre-seeded
func WithFallback(f *Fallback) ClientOption {
	return func(c *Client) {
		c.fallback = f
	}
}

// NewClient creates a new Tencent quote client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		batchSize: DefaultBatchSize,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:  rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:   common.NewSilentLogger(),
		fallback: NewFallback(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// record is one parsed feed line.
type record struct {
	key       string
	name      string
	price     float64
	prevClose float64
	changePct float64
}

// FetchQuotes retrieves live quotes for canonical security identifiers.
// It never fails: failed chunks are skipped, and a totally failed batch
// degrades to the last-known-good slot filtered to the request, then to an
// empty batch.
func (c *Client) FetchQuotes(ctx context.Context, codes []string) *models.QuoteBatch {
	wanted := make(map[string]bool, len(codes))
	keyToCode := make(map[string]string, len(codes))
	keys := make([]string, 0, len(codes))

	for _, raw := range codes {
		code := securities.Normalize(raw)
		if code == "" || wanted[code] {
			continue
		}
		wanted[code] = true

		key, ok := securities.VenueKey(code)
		if !ok {
			// Unroutable: excluded from the request, not an error.
			continue
		}
		keyToCode[key] = code
		keys = append(keys, key)
	}

	if len(keys) == 0 {
		return c.fallback.Filtered(wanted)
	}

	batch := models.NewQuoteBatch(time.Now())
	for start := 0; start < len(keys); start += c.batchSize {
		end := start + c.batchSize
		if end > len(keys) {
			end = len(keys)
		}

		records, err := c.fetchChunk(ctx, keys[start:end])
		if err != nil {
			c.logger.Warn().Err(err).Int("chunk_start", start).Msg("Quote chunk failed, skipping")
			continue
		}

		for _, r := range records {
			code, ok := keyToCode[r.key]
			if !ok {
				continue
			}
			batch.Prices[code] = r.price
			batch.Changes[code] = r.changePct
			batch.Names[code] = r.name
		}
	}

	if !batch.Empty() {
		c.fallback.Replace(batch)
		return batch
	}

	c.logger.Warn().Int("requested", len(wanted)).Msg("Quote batch empty, serving last-known-good")
	return c.fallback.Filtered(wanted)
}

// FetchIndexQuotes retrieves live quotes for venue-prefixed index symbols.
func (c *Client) FetchIndexQuotes(ctx context.Context, symbols []string) map[string]models.IndexQuote {
	result := make(map[string]models.IndexQuote, len(symbols))

	records, err := c.fetchChunk(ctx, symbols)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Index quote fetch failed")
		return result
	}

	for _, r := range records {
		result[r.key] = models.IndexQuote{
			Name:      r.name,
			Symbol:    r.key,
			Price:     r.price,
			ChangePct: r.changePct,
		}
	}
	return result
}

// fetchChunk performs one rate-limited GET for up to batchSize keys.
func (c *Client) fetchChunk(ctx context.Context, keys []string) ([]record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + "/q=" + strings.Join(keys, ",")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug().Int("keys", len(keys)).Msg("Quote feed request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote feed status %d", resp.StatusCode)
	}

	// The feed is GBK-encoded.
	decoded := transform.NewReader(resp.Body, simplifiedchinese.GBK.NewDecoder())
	body, err := io.ReadAll(decoded)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return parseRecords(string(body)), nil
}

// parseRecords parses the semicolon-delimited feed body. Invalid lines are
// dropped; non-numeric price fields coerce to zero rather than failing the
// batch.
func parseRecords(text string) []record {
	var records []record

	for _, line := range strings.Split(text, ";") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "=") || !strings.Contains(line, "v_") {
			continue
		}

		left, right, _ := strings.Cut(line, "=")
		_, key, _ := strings.Cut(left, "v_")

		data := strings.Trim(strings.TrimSpace(right), `"`)
		if data == "" {
			continue
		}

		fields := strings.Split(data, "~")
		if len(fields) < 5 {
			continue
		}

		price := parseFloat(fields[3])
		prevClose := parseFloat(fields[4])

		changePct, ok := 0.0, false
		if len(fields) > 32 {
			changePct, ok = tryParseFloat(fields[32])
		}
		if !ok {
			if prevClose > 0 {
				changePct = (price - prevClose) / prevClose * 100
			} else {
				changePct = 0
			}
		}

		records = append(records, record{
			key:       key,
			name:      fields[1],
			price:     price,
			prevClose: prevClose,
			changePct: changePct,
		})
	}

	return records
}

func parseFloat(s string) float64 {
	v, _ := tryParseFloat(s)
	return v
}

func tryParseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Ensure Client implements QuoteClient
var _ interfaces.QuoteClient = (*Client)(nil)
