// Package sessionstore owns every ranking session of the process: which one
// is active, the live normalized backlog of the active one, and how sessions
// reach the local and offline stores.
//
// All state transitions are serialized by one mutex. Backlog and grid
// mutations are applied in memory immediately and persisted by a trailing
// debounced save; the local store is written synchronously on save and the
// offline store is mirrored in the background.
package sessionstore

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/xkazm04/goat-sub002/internal/backlog"
	"github.com/xkazm04/goat-sub002/internal/domain"
	"github.com/xkazm04/goat-sub002/internal/session"
)

// Defaults used when no option overrides them.
const (
	DefaultSaveDelay = 300 * time.Millisecond
	DefaultListSize  = 50
)

// LocalStore is the synchronous persistence backend.
type LocalStore interface {
	SaveSession(ctx context.Context, s *domain.ListSession) error
	DeleteSession(ctx context.Context, listID string) error
	SetActiveSessionID(ctx context.Context, listID string) error
	LoadState(ctx context.Context) (*domain.PersistedState, error)
	Clear(ctx context.Context) error
}

// OfflineStore is the asynchronous mirror consulted on load. Get returns
// nil and no error when it has no copy.
type OfflineStore interface {
	Save(ctx context.Context, s *domain.ListSession) error
	Get(ctx context.Context, listID string) (*domain.ListSession, error)
	Delete(ctx context.Context, listID string) error
	Clear(ctx context.Context) error
}

// Backend supplies the candidate groups of a list.
type Backend interface {
	FetchGroups(ctx context.Context, listID, category string) ([]domain.Group, error)
}

// Option configures a Store.
type Option func(*Store)

// WithOffline sets the offline mirror.
func WithOffline(o OfflineStore) Option {
	return func(s *Store) { s.offline = o }
}

// WithBackend sets the catalog backend used by SyncWithBackend.
func WithBackend(b Backend) Option {
	return func(s *Store) { s.backend = b }
}

// WithEmitter sets the event sink.
func WithEmitter(e EventEmitter) Option {
	return func(s *Store) { s.emitter = e }
}

// WithSaveDelay sets the debounce window for saves after a mutation.
func WithSaveDelay(d time.Duration) Option {
	return func(s *Store) { s.saves.delay = d }
}

// WithDefaultListSize sets the grid size used when a caller passes none.
func WithDefaultListSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.defaultSize = n
		}
	}
}

// Store is the session orchestrator. Construct it once with New and share it.
type Store struct {
	manager *session.Manager
	local   LocalStore
	offline OfflineStore
	backend Backend
	emitter EventEmitter
	logger  *slog.Logger

	defaultSize int

	mu       sync.Mutex
	sessions map[string]*domain.ListSession
	activeID string
	data     *domain.NormalizedBacklogData
	memo     backlog.Memo
	saves    debouncer
	closed   bool
	// dirty is set by every commit to the active session and cleared by a
	// successful save of it.
	dirty bool

	mirror mirror
	syncs  singleflight.Group
}

// New creates a Store with no sessions. Call Hydrate to restore the local
// record.
func New(manager *session.Manager, local LocalStore, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Store{
		manager:     manager,
		local:       local,
		emitter:     NewNoopEmitter(),
		logger:      logger,
		defaultSize: DefaultListSize,
		sessions:    make(map[string]*domain.ListSession),
		data:        domain.EmptyBacklog(),
		saves:       debouncer{delay: DefaultSaveDelay},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mirror.init()
	return s
}

// Hydrate replaces the in-memory sessions with the local store's record and
// reloads the recorded active session, reconciling it with the offline copy.
func (s *Store) Hydrate(ctx context.Context) error {
	state, err := s.local.LoadState(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.saves.cancel()
	s.sessions = state.ListSessions
	if s.sessions == nil {
		s.sessions = make(map[string]*domain.ListSession)
	}
	s.activeID = ""
	s.data = domain.EmptyBacklog()
	s.dirty = false

	s.logger.Info("session store hydrated", "sessions", len(s.sessions), "active", state.ActiveSessionID)

	if state.ActiveSessionID != "" {
		s.loadLocked(ctx, state.ActiveSessionID, 0)
	}
	return nil
}

// Close writes unsaved changes of the active session and waits for offline mirrors to
// finish or ctx to end. Mutations after Close are kept in memory only.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		if s.dirty {
			if _, err := s.saveLocked(ctx, false); err != nil {
				s.logger.Error("final save failed", "list_id", s.activeID, "error", err)
			}
		}
	}
	s.mu.Unlock()

	return s.mirror.wait(ctx)
}

func (s *Store) sizeOrDefault(size int) int {
	if size > 0 {
		return size
	}
	return s.defaultSize
}

// view returns the active session with its backlog rebuilt from the live
// normalized data. Slices in the result are shared and must not be written.
func (s *Store) viewLocked() *domain.ListSession {
	cur := s.sessions[s.activeID].Clone()
	cur.BacklogGroups = s.memo.Denormalize(s.data)
	return cur
}

// commitLocked installs next as the active session and data as the live
// backlog, stamps the update, emits evt and schedules a debounced save.
func (s *Store) commitLocked(next *domain.ListSession, data *domain.NormalizedBacklogData, evt EventType, payload any) {
	s.sessions[s.activeID] = s.manager.UpdateSessionTimestamp(next)
	s.data = data
	s.dirty = true
	s.emit(evt, s.activeID, payload)
	s.scheduleSaveLocked()
}

func (s *Store) scheduleSaveLocked() {
	if s.closed {
		return
	}
	s.saves.schedule(s.flushDebounced)
}

// flushDebounced runs on the timer goroutine.
func (s *Store) flushDebounced(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.saves.fired(gen) {
		return
	}
	if _, err := s.saveLocked(context.Background(), false); err != nil {
		s.logger.Error("debounced save failed", "list_id", s.activeID, "error", err)
	}
}
