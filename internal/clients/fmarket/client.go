// Package fmarket provides a client that scrapes fund NAV from fmarket.vn
package fmarket

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
	DefaultBaseURL   = "https://fmarket.vn/quy"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 2 // requests per second

	navClass = "nav"
)

// Client fetches open-end fund NAV by scraping the fund's fmarket.vn page.
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

// NewClient creates a new fmarket.vn scraper.
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

// FetchPrice retrieves the current NAV in VND for a fund symbol (e.g. "VESAF").
func (c *Client) FetchPrice(ctx context.Context, symbol string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s/%s", c.baseURL, strings.ToLower(strings.TrimSpace(symbol)))

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
		c.logger.Error().Err(err).Str("fund", symbol).Dur("elapsed", elapsed).Msg("fmarket request failed")
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Str("fund", symbol).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("fmarket non-OK response")
		return 0, fmt.Errorf("fmarket error: status %d for fund %s", resp.StatusCode, symbol)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to parse page: %w", err)
	}

	text, ok := firstTextByClass(doc, navClass)
	if !ok {
		return 0, fmt.Errorf("no NAV element on page for fund %s", symbol)
	}

	nav, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(text), ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse NAV %q: %w", text, err)
	}

	c.logger.Info().Str("fund", symbol).Float64("nav", nav).Dur("elapsed", elapsed).Msg("fmarket NAV fetched")
	return nav, nil
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
