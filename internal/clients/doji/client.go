// Package doji provides a client for the DOJI gold price feed
package doji

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tranvn/folio/internal/common"
	"github.com/tranvn/folio/internal/interfaces"
)

const (
	DefaultBaseURL   = "http://update.giavang.doji.vn/banggia/doji_92411/92411"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 2 // requests per second

	// Feed row keys. SJC bars are quoted on the first row, everything else
	// (rings, plain gold) on the third.
	rowKeySJC   = "doji_1"
	rowKeyOther = "doji_3"
)

// Client fetches gold buy prices from the DOJI XML price board.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the feed URL
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

// NewClient creates a new DOJI price board client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchPrice retrieves the buy price in VND for a gold symbol. The feed
// quotes in thousands of VND per tael, so "12,450" means 12,450,000 VND.
func (c *Client) FetchPrice(ctx context.Context, symbol string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Error().Err(err).Str("symbol", symbol).Dur("elapsed", elapsed).Msg("DOJI feed request failed")
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("DOJI feed non-OK response")
		return 0, fmt.Errorf("DOJI feed error: status %d", resp.StatusCode)
	}

	rowKey := rowKeyOther
	if strings.ToUpper(strings.TrimSpace(symbol)) == "SJC" {
		rowKey = rowKeySJC
	}

	buy, err := extractBuyPrice(resp.Body, rowKey)
	if err != nil {
		return 0, err
	}

	price := buy * 1000
	c.logger.Info().Str("symbol", symbol).Str("row", rowKey).Float64("price", price).Dur("elapsed", elapsed).Msg("DOJI price fetched")
	return price, nil
}

// extractBuyPrice scans the XML token stream for the Row element with the
// given Key attribute and parses its Buy attribute (e.g. "12,450").
func extractBuyPrice(r io.Reader, rowKey string) (float64, error) {
	decoder := xml.NewDecoder(r)
	for {
		token, err := decoder.Token()
		if err != nil {
			return 0, fmt.Errorf("row not found for key %s", rowKey)
		}
		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "Row" {
			continue
		}

		var key, buy string
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "Key":
				key = attr.Value
			case "Buy":
				buy = attr.Value
			}
		}
		if key != rowKey {
			continue
		}

		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, buy)
		if digits == "" {
			return 0, fmt.Errorf("no buy price on row %s", rowKey)
		}

		value, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse buy price %q: %w", buy, err)
		}
		return value, nil
	}
}

// Ensure Client implements PriceClient
var _ interfaces.PriceClient = (*Client)(nil)
