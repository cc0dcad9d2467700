// Package config loads application settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/spf13/viper"
)

// Config holds all application settings. Keys are environment variable names.
type Config struct {
	Server   Server   `mapstructure:",squash"`
	Weather  Weather  `mapstructure:",squash"`
	LLM      LLM      `mapstructure:",squash"`
	Storage  Storage  `mapstructure:",squash"`
	Geocoder Geocoder `mapstructure:",squash"`
	Spotify  Spotify  `mapstructure:",squash"`
	Log      Log      `mapstructure:",squash"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string        `mapstructure:"ADDR" validate:"required"`
	MetricsEnabled  bool          `mapstructure:"METRICS_ENABLED"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"min:1"`
}

// Weather configures the current-conditions API.
type Weather struct {
	URL    string `mapstructure:"WEATHER_URL" validate:"required"`
	APIKey string `mapstructure:"WEATHER_API_KEY" validate:"required"`
}

// LLM configures the completion backend.
type LLM struct {
	Provider string `mapstructure:"LLM_PROVIDER" validate:"required|in:openai,gemini"`
	APIKey   string `mapstructure:"CHATGPT_API_KEY" validate:"required"`
	Model    string `mapstructure:"LLM_MODEL"`
	BaseURL  string `mapstructure:"LLM_BASE_URL"`
}

// Storage configures persistence.
type Storage struct {
	// DatabaseURL is a postgres:// URL or a SQLite file path.
	DatabaseURL string  `mapstructure:"DATABASE_URL" validate:"required"`
	CacheSizeMB int     `mapstructure:"CACHE_SIZE_MB" validate:"min:0"`
	PinRadius   float64 `mapstructure:"PIN_RADIUS" validate:"min:1"`
}

// Geocoder configures reverse geocoding.
type Geocoder struct {
	URL     string        `mapstructure:"GEOCODER_URL" validate:"required"`
	Timeout time.Duration `mapstructure:"GEOCODE_TIMEOUT" validate:"min:1"`
}

// Spotify holds optional catalog credentials.
type Spotify struct {
	ClientID     string `mapstructure:"SPOTIFY_ID"`
	ClientSecret string `mapstructure:"SPOTIFY_SECRET"`
}

// Log configures logging.
type Log struct {
	Level string `mapstructure:"LOG_LEVEL" validate:"required|in:debug,info,warn,error"`
	File  string `mapstructure:"LOG_FILE"`
}

var defaults = map[string]any{
	"ADDR":             "127.0.0.1:8080",
	"METRICS_ENABLED":  true,
	"SHUTDOWN_TIMEOUT": 10 * time.Second,
	"LLM_PROVIDER":     "openai",
	"DATABASE_URL":     "muji.db",
	"CACHE_SIZE_MB":    8,
	"PIN_RADIUS":       50.0,
	"GEOCODER_URL":     "https://nominatim.openstreetmap.org",
	"GEOCODE_TIMEOUT":  15 * time.Second,
	"LOG_LEVEL":        "info",
}

// keys without defaults that must still be read from the environment.
var envOnly = []string{
	"WEATHER_URL",
	"WEATHER_API_KEY",
	"CHATGPT_API_KEY",
	"LLM_MODEL",
	"LLM_BASE_URL",
	"SPOTIFY_ID",
	"SPOTIFY_SECRET",
	"LOG_FILE",
}

// Load reads settings from the environment. When envFile is non-empty and
// exists, it is read first; environment variables take precedence.
// Load does not validate; call Validate or a section's Validate.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range envOnly {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}
	v.AutomaticEnv()

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading %s: %w", envFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	return &cfg, nil
}

// Validate checks every section and joins the failures.
func (c *Config) Validate() error {
	return errors.Join(
		c.Server.Validate(),
		c.Weather.Validate(),
		c.LLM.Validate(),
		c.Storage.Validate(),
		c.Geocoder.Validate(),
		c.Log.Validate(),
	)
}

func (s *Server) Validate() error   { return check("server", s) }
func (w *Weather) Validate() error  { return check("weather", w) }
func (l *LLM) Validate() error      { return check("llm", l) }
func (s *Storage) Validate() error  { return check("storage", s) }
func (g *Geocoder) Validate() error { return check("geocoder", g) }
func (l *Log) Validate() error      { return check("log", l) }

// IsPostgres reports whether DatabaseURL selects the PostgreSQL backend.
func (s Storage) IsPostgres() bool {
	return strings.HasPrefix(s.DatabaseURL, "postgres://") ||
		strings.HasPrefix(s.DatabaseURL, "postgresql://")
}

func check(section string, s any) error {
	v := validate.Struct(s)
	if v.Validate() {
		return nil
	}
	return fmt.Errorf("invalid %s config: %w", section, v.Errors)
}
