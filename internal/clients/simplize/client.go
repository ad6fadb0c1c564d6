// Package simplize provides a client that scrapes stock prices from simplize.vn
package simplize

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/tranvn/folio/internal/common"
	"github.com/tranvn/folio/internal/interfaces"
)

const (
	DefaultBaseURL   = "https://simplize.vn/co-phieu"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 2 // requests per second

	// simplize.vn renders the quote inside a styled-components class.
	// Brittle by nature; a markup change on their side breaks the scrape.
	priceClass = "css-19r22fg"
)

// Client fetches HOSE/HNX stock prices by scraping the ticker's simplize.vn page.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
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

// NewClient creates a new simplize.vn scraper.
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

// FetchPrice retrieves the current price in VND for a stock ticker (e.g. "HPG").
func (c *Client) FetchPrice(ctx context.Context, symbol string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit wait: %w", err)
	}

	ticker := strings.ToUpper(strings.TrimSpace(symbol))
	reqURL := fmt.Sprintf("%s/%s", c.baseURL, ticker)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	req.Header.Set("Accept", "text/html")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Error().Err(err).Str("ticker", ticker).Dur("elapsed", elapsed).Msg("simplize request failed")
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Str("ticker", ticker).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("simplize non-OK response")
		return 0, fmt.Errorf("simplize error: status %d for ticker %s", resp.StatusCode, ticker)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to parse page: %w", err)
	}

	text, ok := firstTextByClass(doc, priceClass)
	if !ok {
		return 0, fmt.Errorf("no price element on page for ticker %s", ticker)
	}

	price, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(text), ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse price %q: %w", text, err)
	}

	c.logger.Info().Str("ticker", ticker).Float64("price", price).Dur("elapsed", elapsed).Msg("simplize price fetched")
	return price, nil
}

// firstTextByClass walks the document and returns the text content of the
// first element carrying the given CSS class.
func firstTextByClass(n *html.Node, class string) (string, bool) {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key != "class" {
				continue
			}
			for _, name := range strings.Fields(attr.Val) {
				if name == class {
					return nodeText(n), true
				}
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if text, ok := firstTextByClass(child, class); ok {
			return text, ok
		}
	}
	return "", false
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}

// Ensure Client implements PriceClient
var _ interfaces.PriceClient = (*Client)(nil)
