package di

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/go-muji/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:   config.Server{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second},
		Weather:  config.Weather{URL: "https://weather.test/onecall", APIKey: "weather-key"},
		LLM:      config.LLM{Provider: "openai", APIKey: "llm-key"},
		Storage:  config.Storage{DatabaseURL: filepath.Join(t.TempDir(), "muji.db"), CacheSizeMB: 1, PinRadius: 50},
		Geocoder: config.Geocoder{URL: "https://geocoder.test", Timeout: time.Second},
		Log:      config.Log{Level: "error"},
	}
}

func TestInitializeStorage_SQLite(t *testing.T) {
	ctx := context.Background()
	repos, cleanup, err := InitializeStorage(ctx, testConfig(t))
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, "sqlite", repos.Backend)
	require.NoError(t, repos.Preferences.Put(ctx, "k", []byte("v")))
	v, err := repos.Preferences.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(v))
}

func TestInitializeStorage_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.DatabaseURL = ""

	_, _, err := InitializeStorage(context.Background(), cfg)
	assert.Error(t, err)
}

func TestInitializeApp(t *testing.T) {
	app, cleanup, err := InitializeApp(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.Pipeline)
	assert.NotNil(t, app.Emotions)
	assert.NotNil(t, app.Logger)
}

func TestInitializeApp_UnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.Provider = "claude"

	_, _, err := InitializeApp(context.Background(), cfg)
	assert.Error(t, err)
}
