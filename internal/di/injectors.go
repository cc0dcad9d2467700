//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/justestif/go-muji/internal/config"
)

// InitializeApp assembles the server and its dependencies.
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(AppSet)
	return nil, nil, nil
}

// InitializeStorage opens the configured storage backend, applying its schema.
func InitializeStorage(ctx context.Context, cfg *config.Config) (*Repositories, func(), error) {
	wire.Build(StorageSet)
	return nil, nil, nil
}
