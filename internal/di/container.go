// Package di provides dependency injection configuration for the session server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/xkazm04/goat-sub002/internal/config"
	"github.com/xkazm04/goat-sub002/internal/di/providers"
	"github.com/xkazm04/goat-sub002/internal/logger"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideLocalStore)
	do.Provide(injector, providers.ProvideOfflineStore)

	// Backend
	do.Provide(injector, providers.ProvideCatalogClient)

	// Sessions and events
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideSessionStore)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the server is listening.
// Provider errors are returned instead of panicking.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SessionStoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
