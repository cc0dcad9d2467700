package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const userAgent = "muji/1.0"

// Sentinel errors.
var (
	// ErrInvalidAPIKey is returned when the API rejects the key.
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrMalformedResponse is returned when the payload lacks current conditions.
	ErrMalformedResponse = errors.New("malformed weather response")
)

// Client is a weather API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for dropped asynchronous failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a weather client. Missing settings are reported as
// ErrMissingAPIKey or ErrMissingBaseURL.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch returns a description of current conditions at lat/lon, for example
// "현재 날씨: 맑음, 체감 온도: 21.35℃".
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (string, error) {
	reqURL, err := c.buildURL(lat, lon)
	if err != nil {
		return "", err
	}

	body, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return "", fmt.Errorf("fetching weather: %w", err)
	}

	var resp conditionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parsing weather response: %w", err)
	}
	if resp.Current == nil || resp.Current.FeelsLike == nil {
		return "", ErrMalformedResponse
	}

	description := noDescription
	if len(resp.Current.Weather) > 0 && resp.Current.Weather[0].Description != "" {
		description = resp.Current.Weather[0].Description
	}

	celsius := *resp.Current.FeelsLike - kelvinOffset
	return fmt.Sprintf("현재 날씨: %s, 체감 온도: %.2f℃", description, celsius), nil
}

// FetchAsync runs Fetch in the background and calls fn with the description
// on success. Failures are logged and fn is never called.
func (c *Client) FetchAsync(ctx context.Context, lat, lon float64, fn func(string)) {
	go func() {
		desc, err := c.Fetch(ctx, lat, lon)
		if err != nil {
			c.logger.Warn("weather lookup dropped",
				zap.Float64("lat", lat),
				zap.Float64("lon", lon),
				zap.Error(err),
			)
			return
		}
		fn(desc)
	}()
}

// buildURL sets lat, lon, lang and appid on the configured base URL,
// preserving any other query parameters it carries.
func (c *Client) buildURL(lat, lon float64) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("lang", "kr")
	q.Set("appid", c.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// doRequest performs a single GET and maps API errors to sentinels.
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrInvalidAPIKey
	case resp.StatusCode != http.StatusOK:
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return body, nil
}
