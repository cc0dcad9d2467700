// Package weather fetches current conditions and renders them as a one-line description.
package weather

import "errors"

var (
	// ErrMissingAPIKey is returned when WEATHER_API_KEY is not set.
	ErrMissingAPIKey = errors.New("missing WEATHER_API_KEY")

	// ErrMissingBaseURL is returned when WEATHER_URL is not set.
	ErrMissingBaseURL = errors.New("missing WEATHER_URL")
)

// Config holds weather API configuration.
type Config struct {
	APIKey  string
	BaseURL string
}

// Validate reports the first missing required setting.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	return nil
}
