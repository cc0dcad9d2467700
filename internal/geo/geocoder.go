package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	// DefaultGeocoderURL is the public Nominatim endpoint.
	DefaultGeocoderURL = "https://nominatim.openstreetmap.org"

	// UnknownLocation is stored when a coordinate cannot be resolved.
	UnknownLocation = "위치 정보 없음"

	userAgent = "muji/1.0"
)

// Sentinel errors.
var (
	// ErrNoAddress is returned when the geocoder has no address for a coordinate.
	ErrNoAddress = errors.New("no address for coordinate")
)

// Geocoder resolves a coordinate into a human-readable address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, c Coordinate) (string, error)
}

// Client is a Nominatim-compatible reverse geocoding client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	language   string
}

// NewClient creates a reverse geocoding client against baseURL.
// An empty baseURL selects DefaultGeocoderURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultGeocoderURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: "ko",
	}
}

type reverseResponse struct {
	Error   string `json:"error"`
	Address struct {
		State    string `json:"state"`
		Province string `json:"province"`
		City     string `json:"city"`
		Town     string `json:"town"`
		Village  string `json:"village"`
		County   string `json:"county"`
		Borough  string `json:"borough"`
		Road     string `json:"road"`
	} `json:"address"`
}

// ReverseGeocode returns the administrative area, locality and street for c
// joined with spaces.
func (c *Client) ReverseGeocode(ctx context.Context, coord Coordinate) (string, error) {
	params := url.Values{
		"format":          {"jsonv2"},
		"lat":             {strconv.FormatFloat(coord.Latitude, 'f', -1, 64)},
		"lon":             {strconv.FormatFloat(coord.Longitude, 'f', -1, 64)},
		"accept-language": {c.language},
	}
	reqURL := c.baseURL + "/reverse?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var rr reverseResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return "", fmt.Errorf("parsing reverse geocode response: %w", err)
	}
	if rr.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrNoAddress, rr.Error)
	}

	a := rr.Address
	address := joinParts(
		firstNonEmpty(a.State, a.Province),
		firstNonEmpty(a.City, a.Town, a.Village, a.County),
		a.Borough,
		a.Road,
	)
	if address == "" {
		return "", ErrNoAddress
	}
	return address, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// joinParts joins non-empty parts with a space, skipping repeats.
func joinParts(parts ...string) string {
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, " ")
}
