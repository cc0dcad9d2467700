package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("WEATHER_URL", "https://api.openweathermap.org/data/3.0/onecall")
	t.Setenv("WEATHER_API_KEY", "weather-key")
	t.Setenv("CHATGPT_API_KEY", "llm-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.True(t, cfg.Server.MetricsEnabled)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "muji.db", cfg.Storage.DatabaseURL)
	assert.Equal(t, 8, cfg.Storage.CacheSizeMB)
	assert.InDelta(t, 50.0, cfg.Storage.PinRadius, 1e-9)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geocoder.URL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "weather-key", cfg.Weather.APIKey)
	assert.Equal(t, "llm-key", cfg.LLM.APIKey)
	assert.False(t, cfg.Storage.IsPostgres())
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("DATABASE_URL", "postgres://localhost/muji")
	t.Setenv("PIN_RADIUS", "75")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("SPOTIFY_ID", "id")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.True(t, cfg.Storage.IsPostgres())
	assert.InDelta(t, 75.0, cfg.Storage.PinRadius, 1e-9)
	assert.False(t, cfg.Server.MetricsEnabled)
	assert.Equal(t, "id", cfg.Spotify.ClientID)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "WEATHER_URL=https://weather.test\nWEATHER_API_KEY=from-file\nCHATGPT_API_KEY=from-file\nLOG_LEVEL=debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CHATGPT_API_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "from-file", cfg.Weather.APIKey)
	assert.Equal(t, "from-env", cfg.LLM.APIKey)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	setRequired(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing weather key", func(c *Config) { c.Weather.APIKey = "" }},
		{"missing weather url", func(c *Config) { c.Weather.URL = "" }},
		{"missing llm key", func(c *Config) { c.LLM.APIKey = "" }},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "claude" }},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
