package providers

import (
	"github.com/samber/do/v2"

	"github.com/xkazm04/goat-sub002/internal/catalog"
	"github.com/xkazm04/goat-sub002/internal/config"
	"github.com/xkazm04/goat-sub002/internal/logger"
)

// CatalogClientHandle wraps the catalog backend client with shutdown
// capability. Client is nil when no backend URL is configured.
type CatalogClientHandle struct {
	*catalog.Client
}

// Shutdown implements do.Shutdownable.
func (h *CatalogClientHandle) Shutdown() error {
	if h.Client != nil {
		h.Client.Close()
	}
	return nil
}

// ProvideCatalogClient provides the catalog backend client.
func ProvideCatalogClient(i do.Injector) (*CatalogClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Backend.URL == "" {
		log.Info("Catalog backend not configured, sync disabled")
		return &CatalogClientHandle{}, nil
	}

	client, err := catalog.New(cfg.Backend.URL, cfg.Backend.Timeout, cfg.Backend.RequestsPerSecond, log.Component("catalog"))
	if err != nil {
		return nil, err
	}

	log.Info("Catalog client initialized",
		"url", cfg.Backend.URL,
		"timeout", cfg.Backend.Timeout,
		"rps", cfg.Backend.RequestsPerSecond,
	)
	return &CatalogClientHandle{Client: client}, nil
}
