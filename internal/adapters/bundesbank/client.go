package bundesbank

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SscSPs/fx_rates_ingestor/internal/apperrors"
	"github.com/SscSPs/fx_rates_ingestor/internal/core/domain"
)

const (
	DefaultURLTemplate = "https://api.statistiken.bundesbank.de/rest/data/BBEX3/D.%s.EUR.BB.AC.000"
	DefaultTimeout     = 10 * time.Second

	sdmxJSONMediaType = "application/vnd.sdmx.data+json"
	maxPayloadBytes   = 32 << 20
	defaultUserAgent  = "fx-rates-ingestor/1.0"
)

// Config configures the live time-series client.
type Config struct {
	URLTemplate       string        // fmt template with one %s for the currency code
	Timeout           time.Duration // per request
	CurrencyDimension string
	UserAgent         string
}

// Client fetches daily reference rate series from the Bundesbank time-series API.
type Client struct {
	config     Config
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a Client, filling unset config fields with defaults.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	if strings.TrimSpace(cfg.URLTemplate) == "" {
		cfg.URLTemplate = DefaultURLTemplate
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CurrencyDimension == "" {
		cfg.CurrencyDimension = DefaultCurrencyDimension
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SeriesURL returns the request URL for a currency code.
func (c *Client) SeriesURL(code string) string {
	return fmt.Sprintf(c.config.URLTemplate, url.PathEscape(strings.ToUpper(code)))
}

// FetchCurrency requests the series for one currency and decodes it.
// Transport failures and non-200 responses wrap apperrors.ErrSourceUnavailable.
func (c *Client) FetchCurrency(ctx context.Context, code string) ([]domain.Series, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SeriesURL(code), nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", code, err)
	}
	req.Header.Set("Accept", sdmxJSONMediaType)
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", apperrors.ErrSourceUnavailable, code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: fetching %s: HTTP %d", apperrors.ErrSourceUnavailable, code, resp.StatusCode)
	}

	series, err := DecodeSeries(io.LimitReader(resp.Body, maxPayloadBytes), c.config.CurrencyDimension)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", apperrors.ErrSourceUnavailable, code, ctx.Err())
		}
		return nil, fmt.Errorf("decoding %s: %w", code, err)
	}
	return series, nil
}
