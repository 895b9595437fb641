package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// hydrateTimeout bounds restoring sessions from the local store at startup.
	hydrateTimeout = 30 * time.Second
)
