package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/xkazm04/goat-sub002/internal/config"
	"github.com/xkazm04/goat-sub002/internal/logger"
	"github.com/xkazm04/goat-sub002/internal/session"
	"github.com/xkazm04/goat-sub002/internal/sessionstore"
	"github.com/xkazm04/goat-sub002/internal/sse"
	"github.com/xkazm04/goat-sub002/internal/validation"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Component("sse"))

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// SessionStoreHandle wraps the session store with shutdown capability.
type SessionStoreHandle struct {
	*sessionstore.Store
}

// Shutdown implements do.Shutdownable. It flushes a pending save and waits
// for offline writes before the stores underneath are closed.
func (h *SessionStoreHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Close(ctx)
}

// ProvideSessionStore provides the session store, hydrated from the local
// store.
func ProvideSessionStore(i do.Injector) (*SessionStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	local := do.MustInvoke[*LocalStoreHandle](i)
	offline := do.MustInvoke[*OfflineStoreHandle](i)
	catalogHandle := do.MustInvoke[*CatalogClientHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	opts := []sessionstore.Option{
		sessionstore.WithOffline(offline.Store),
		sessionstore.WithEmitter(sseHandle.Manager),
		sessionstore.WithSaveDelay(cfg.Session.SaveDebounce),
		sessionstore.WithDefaultListSize(cfg.Session.DefaultListSize),
	}
	if catalogHandle.Client != nil {
		opts = append(opts, sessionstore.WithBackend(catalogHandle.Client))
	}

	manager := session.NewManager(validation.New(), nil)
	st := sessionstore.New(manager, local.Store, log.Component("sessions"), opts...)

	ctx, cancel := context.WithTimeout(context.Background(), hydrateTimeout)
	defer cancel()
	if err := st.Hydrate(ctx); err != nil {
		return nil, err
	}

	log.Info("Session store ready",
		"sessions", len(st.Sessions()),
		"active", st.ActiveSessionID(),
	)
	return &SessionStoreHandle{Store: st}, nil
}
