package backlog

import "github.com/xkazm04/goat-sub002/internal/domain"

// Memo caches the last Denormalize result keyed by the identity of the
// normalized aggregate. The aggregate is never modified in place, so a
// pointer match means the cached tree is still current.
//
// Memo is not safe for concurrent use; the owner serializes access.
type Memo struct {
	data     *domain.NormalizedBacklogData
	groups   []domain.Group
	computes int
}

// Denormalize returns the tree form of data, recomputing only when data is a
// different pointer from the previous call. The returned slice is shared
// between calls and must not be modified.
func (m *Memo) Denormalize(data *domain.NormalizedBacklogData) []domain.Group {
	if m.groups != nil && m.data == data {
		return m.groups
	}
	m.data = data
	m.groups = Denormalize(data)
	m.computes++
	return m.groups
}

// Reset drops the cached entry.
func (m *Memo) Reset() {
	m.data = nil
	m.groups = nil
}
