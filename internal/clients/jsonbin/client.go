// Package jsonbin provides a client for the jsonbin.io key-value blob store
// holding the user's fund list as one JSON document.
package jsonbin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bobmcallan/navcast/internal/common"
	"github.com/bobmcallan/navcast/internal/interfaces"
	"github.com/bobmcallan/navcast/internal/models"
)

const (
	DefaultBaseURL = "https://api.jsonbin.io/v3"
	DefaultTimeout = 8 * time.Second
)

// Client implements the RemoteBlobClient interface
type Client struct {
	baseURL    string
	apiKey     string
	binID      string
	httpClient *http.Client
	logger     *common.Logger
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

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new jsonbin client for one bin
func NewClient(apiKey, binID string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		binID:   binID,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
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
	return fmt.Sprintf("jsonbin API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// binEnvelope wraps the stored document: {"record": [...], "metadata": {...}}
type binEnvelope struct {
	Record []models.FundRecord `json:"record"`
}

// GetFunds reads the whole fund list from the bin.
func (c *Client) GetFunds(ctx context.Context) ([]models.FundRecord, error) {
	url := fmt.Sprintf("%s/b/%s/latest", c.baseURL, c.binID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Master-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body), Endpoint: url}
	}

	var envelope binEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode bin: %w", err)
	}

	return envelope.Record, nil
}

// PutFunds replaces the whole fund list in the bin.
func (c *Client) PutFunds(ctx context.Context, funds []models.FundRecord) error {
	url := fmt.Sprintf("%s/b/%s", c.baseURL, c.binID)

	// The store rejects null documents; an empty list is a valid state.
	if funds == nil {
		funds = []models.FundRecord{}
	}

	payload, err := json.Marshal(funds)
	if err != nil {
		return fmt.Errorf("failed to marshal funds: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Master-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Message: string(body), Endpoint: url}
	}

	c.logger.Debug().Int("funds", len(funds)).Msg("Fund list saved to remote bin")
	return nil
}

// Ensure Client implements RemoteBlobClient
var _ interfaces.RemoteBlobClient = (*Client)(nil)
