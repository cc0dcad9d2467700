// Package di wires the application's components together.
package di

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/justestif/go-muji/internal/config"
	"github.com/justestif/go-muji/internal/db"
	"github.com/justestif/go-muji/internal/emotions"
	"github.com/justestif/go-muji/internal/geo"
	"github.com/justestif/go-muji/internal/localstore"
	"github.com/justestif/go-muji/internal/logging"
	"github.com/justestif/go-muji/internal/metrics"
	"github.com/justestif/go-muji/internal/pipeline"
	"github.com/justestif/go-muji/internal/playlist"
	"github.com/justestif/go-muji/internal/prefs"
	"github.com/justestif/go-muji/internal/profile"
	"github.com/justestif/go-muji/internal/recommend"
	"github.com/justestif/go-muji/internal/spotify"
	"github.com/justestif/go-muji/internal/weather"
	"github.com/justestif/go-muji/internal/web"
)

// App is the assembled application.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Server   *web.Server
	Emotions *emotions.Service
	Pipeline *pipeline.Pipeline
}

// Repositories is the selected storage backend.
type Repositories struct {
	Backend     string
	Emotions    emotions.Repository
	Profiles    profile.Repository
	Preferences prefs.Backend
}

// StorageSet provides the logger and storage.
var StorageSet = wire.NewSet(
	ProvideLogger,
	ProvideRepositories,
)

// AppSet provides every component of the server.
var AppSet = wire.NewSet(
	StorageSet,
	ProvideMetrics,
	ProvideGeocoder,
	ProvidePrefs,
	ProvideEmotions,
	ProvideProfiles,
	ProvidePlaylist,
	ProvideWeather,
	ProvideCompleter,
	ProvideRequester,
	ProvideTrackResolver,
	ProvidePipeline,
	ProvideHandlers,
	ProvideServer,
	wire.Struct(new(App), "*"),
)

// ProvideLogger builds the zap logger from the log settings.
func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideRepositories opens PostgreSQL for postgres:// URLs and the
// on-device SQLite store otherwise. The schema is applied on open.
func ProvideRepositories(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Repositories, func(), error) {
	if err := cfg.Storage.Validate(); err != nil {
		return nil, nil, err
	}

	if cfg.Storage.IsPostgres() {
		database, err := db.New(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		logger.Info("using postgres storage")
		return &Repositories{
			Backend:     "postgres",
			Emotions:    database.Emotions(),
			Profiles:    database.Profiles(),
			Preferences: database.Preferences(),
		}, database.Close, nil
	}

	store, err := localstore.Open(cfg.Storage.DatabaseURL, logger.Named("sqlite"))
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using sqlite storage", zap.String("path", cfg.Storage.DatabaseURL))
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing sqlite store", zap.Error(err))
		}
	}
	return &Repositories{
		Backend:     "sqlite",
		Emotions:    store.Emotions(),
		Profiles:    store.Profiles(),
		Preferences: store.Preferences(),
	}, cleanup, nil
}

// ProvideMetrics returns the Prometheus provider, or a no-op one when disabled.
func ProvideMetrics(cfg *config.Config) metrics.Provider {
	return metrics.New(cfg.Server.MetricsEnabled)
}

// ProvideGeocoder returns the reverse geocoder.
func ProvideGeocoder(cfg *config.Config) geo.Geocoder {
	return geo.NewClient(cfg.Geocoder.URL)
}

// ProvidePrefs returns the cached preference store.
func ProvidePrefs(repos *Repositories, cfg *config.Config, logger *zap.Logger, m metrics.Provider) *prefs.Store {
	return prefs.NewStore(repos.Preferences,
		prefs.WithCache(prefs.NewCache(cfg.Storage.CacheSizeMB)),
		prefs.WithLogger(logger.Named("prefs")),
		prefs.WithMetrics(m),
	)
}

// ProvideEmotions returns the emotion store.
func ProvideEmotions(repos *Repositories, geocoder geo.Geocoder, store *prefs.Store, cfg *config.Config, logger *zap.Logger) *emotions.Service {
	return emotions.NewService(repos.Emotions, geocoder, store,
		emotions.WithLogger(logger.Named("emotions")),
		emotions.WithRadius(cfg.Storage.PinRadius),
		emotions.WithGeocodeTimeout(cfg.Geocoder.Timeout),
	)
}

// ProvideProfiles returns the profile service.
func ProvideProfiles(repos *Repositories, store *prefs.Store, logger *zap.Logger) *profile.Service {
	return profile.NewService(repos.Profiles, store, logger.Named("profile"))
}

// ProvidePlaylist returns the playlist service.
func ProvidePlaylist(store *prefs.Store) *playlist.Service {
	return playlist.NewService(store)
}

// ProvideWeather returns the weather client.
func ProvideWeather(cfg *config.Config, logger *zap.Logger) (*weather.Client, error) {
	return weather.NewClient(weather.Config{
		APIKey:  cfg.Weather.APIKey,
		BaseURL: cfg.Weather.URL,
	}, weather.WithLogger(logger.Named("weather")))
}

// ProvideCompleter returns the configured language model backend.
func ProvideCompleter(ctx context.Context, cfg *config.Config) (recommend.Completer, error) {
	return recommend.NewCompleter(ctx, recommend.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
	})
}

// ProvideRequester returns the recommendation requester.
func ProvideRequester(completer recommend.Completer, logger *zap.Logger) *recommend.Requester {
	return recommend.NewRequester(completer, logger.Named("recommend"))
}

// ProvideTrackResolver returns a Spotify catalog client, or nil when no
// credentials are configured.
func ProvideTrackResolver(ctx context.Context, cfg *config.Config, logger *zap.Logger) (pipeline.TrackResolver, error) {
	client, err := spotify.NewClient(ctx, spotify.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
	})
	if errors.Is(err, spotify.ErrMissingCredentials) {
		logger.Info("spotify credentials not set, track lookup disabled")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}

// ProvidePipeline returns the recommendation pipeline.
func ProvidePipeline(
	w *weather.Client,
	requester *recommend.Requester,
	profiles *profile.Service,
	emotionStore *emotions.Service,
	resolver pipeline.TrackResolver,
	m metrics.Provider,
	logger *zap.Logger,
) *pipeline.Pipeline {
	opts := []pipeline.Option{
		pipeline.WithMetrics(m),
		pipeline.WithLogger(logger.Named("pipeline")),
	}
	if resolver != nil {
		opts = append(opts, pipeline.WithTrackResolver(resolver))
	}
	return pipeline.New(w, requester, profiles, emotionStore, opts...)
}

// ProvideHandlers returns the HTTP handlers.
func ProvideHandlers(
	emotionStore *emotions.Service,
	store *prefs.Store,
	p *pipeline.Pipeline,
	profiles *profile.Service,
	songs *playlist.Service,
	logger *zap.Logger,
) *web.Handlers {
	return web.NewHandlers(emotionStore, store, p, profiles, songs, logger.Named("web"))
}

// ProvideServer returns the HTTP server.
func ProvideServer(cfg *config.Config, h *web.Handlers, m metrics.Provider, logger *zap.Logger) *web.Server {
	return web.NewServer(web.ServerConfig{
		Addr:            cfg.Server.Addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, h, m, logger)
}
