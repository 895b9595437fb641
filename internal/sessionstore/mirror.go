package sessionstore

import (
	"context"
	"errors"
	"sync"

	"github.com/xkazm04/goat-sub002/internal/domain"
	"github.com/xkazm04/goat-sub002/internal/store"
)

// mirror serializes offline writes and deletes. A write carries a ticket
// taken under Store.mu when it was scheduled, so ticket sequence numbers
// follow commit order. A write whose sequence is not above the last one
// written for its list is dropped, whatever its timestamps say. Deleting a
// list or resetting the store invalidates outstanding tickets so a late
// write cannot resurrect data.
//
// Lock order: Store.mu before mirror.mu, never the reverse.
type mirror struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	epochs  map[string]uint64
	written map[string]uint64
	seq     uint64
	reset   uint64
}

type ticket struct {
	listID string
	seq    uint64
	epoch  uint64
	reset  uint64
}

func (m *mirror) init() {
	m.epochs = make(map[string]uint64)
	m.written = make(map[string]uint64)
}

// ticket must be called with Store.mu held.
func (m *mirror) ticket(listID string) ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return ticket{listID: listID, seq: m.seq, epoch: m.epochs[listID], reset: m.reset}
}

// valid must be called with m.mu held.
func (m *mirror) valid(t ticket) bool {
	return m.reset == t.reset && m.epochs[t.listID] == t.epoch
}

func (m *mirror) wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// mirrorAsync writes sess to the offline store in the background. Called
// with s.mu held. After Close the write happens inline.
func (s *Store) mirrorAsync(sess *domain.ListSession) {
	if s.offline == nil {
		return
	}
	t := s.mirror.ticket(sess.ID)
	if s.closed {
		s.writeOffline(context.Background(), sess, t)
		return
	}
	s.mirror.wg.Add(1)
	go func() {
		defer s.mirror.wg.Done()
		s.writeOffline(context.Background(), sess, t)
	}()
}

// writeOffline stores sess unless its ticket was invalidated. Failures are
// logged; the local store stays authoritative.
func (s *Store) writeOffline(ctx context.Context, sess *domain.ListSession, t ticket) {
	if s.offline == nil {
		return
	}
	s.mirror.mu.Lock()
	defer s.mirror.mu.Unlock()

	if !s.mirror.valid(t) {
		s.logger.Debug("dropping offline write for removed session", "list_id", sess.ID)
		return
	}
	if t.seq <= s.mirror.written[t.listID] {
		s.logger.Debug("dropping superseded offline write", "list_id", sess.ID, "seq", t.seq)
		return
	}
	s.mirror.written[t.listID] = t.seq

	err := s.offline.Save(ctx, sess)
	switch {
	case errors.Is(err, store.ErrStale):
		s.logger.Debug("offline copy is newer, write skipped", "list_id", sess.ID)
	case err != nil:
		s.logger.Warn("offline mirror failed", "list_id", sess.ID, "error", err)
	}
}

// readOffline returns the offline copy of listID, treating any failure as
// "no copy".
func (s *Store) readOffline(ctx context.Context, listID string) *domain.ListSession {
	if s.offline == nil {
		return nil
	}
	sess, err := s.offline.Get(ctx, listID)
	if err != nil {
		s.logger.Warn("offline read failed, ignoring offline copy", "list_id", listID, "error", err)
		return nil
	}
	return sess
}

func (s *Store) forgetOffline(ctx context.Context, listID string) {
	if s.offline == nil {
		return
	}
	s.mirror.mu.Lock()
	defer s.mirror.mu.Unlock()

	s.mirror.epochs[listID]++
	delete(s.mirror.written, listID)
	if err := s.offline.Delete(ctx, listID); err != nil {
		s.logger.Warn("offline delete failed", "list_id", listID, "error", err)
	}
}

func (s *Store) clearOffline(ctx context.Context) {
	if s.offline == nil {
		return
	}
	s.mirror.mu.Lock()
	defer s.mirror.mu.Unlock()

	s.mirror.reset++
	clear(s.mirror.written)
	if err := s.offline.Clear(ctx); err != nil {
		s.logger.Warn("offline clear failed", "error", err)
	}
}
