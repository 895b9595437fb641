package providers

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/xkazm04/goat-sub002/internal/config"
	"github.com/xkazm04/goat-sub002/internal/logger"
	"github.com/xkazm04/goat-sub002/internal/store"
	"github.com/xkazm04/goat-sub002/internal/store/sqlite"
)

// LocalStoreHandle wraps the SQLite local store with shutdown capability.
type LocalStoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *LocalStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideLocalStore opens the SQLite local store under the data path.
func ProvideLocalStore(i do.Injector) (*LocalStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create data path: %w", err)
	}

	db, err := sqlite.Open(cfg.Storage.SQLitePath(), log.Component("local-store"))
	if err != nil {
		return nil, err
	}
	return &LocalStoreHandle{Store: db}, nil
}

// OfflineStoreHandle wraps the badger offline mirror with shutdown capability.
type OfflineStoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *OfflineStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideOfflineStore opens the badger offline mirror under the data path.
func ProvideOfflineStore(i do.Injector) (*OfflineStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	path := cfg.Storage.OfflinePath()
	db, err := store.New(path, log.Component("offline-store"))
	if err != nil {
		return nil, err
	}

	log.Info("Offline store initialized", "path", path)
	return &OfflineStoreHandle{Store: db}, nil
}
