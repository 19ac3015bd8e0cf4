package audit

import (
	"context"
	"sync"

	id "circ/pkg/domain"
	"circ/pkg/platform/sentinel"
	txcontext "circ/pkg/platform/tx"
)

// InMemoryStore keeps the trail in an append-only slice. Used by tests and by
// deployments without a database. Appends made inside a journalled in-memory
// transaction are removed again when the transaction rolls back, so the trail
// never records a mutation that did not commit.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	byID    map[id.EntryID]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byID: make(map[id.EntryID]int)}
}

func (s *InMemoryStore) Append(ctx context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[entry.ID] = len(s.entries)
	s.entries = append(s.entries, entry)
	entryID := entry.ID
	txcontext.RecordUndo(ctx, func() {
		s.remove(entryID)
	})
	return nil
}

// remove drops one entry and reindexes the ones appended after it.
func (s *InMemoryStore) remove(entryID id.EntryID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byID[entryID]
	if !ok {
		return
	}
	delete(s.byID, entryID)
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	for i := idx; i < len(s.entries); i++ {
		s.byID[s.entries[i].ID] = i
	}
}

func (s *InMemoryStore) Query(_ context.Context, filter Filter) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := filter.EffectiveLimit()
	matched := make([]Entry, 0, limit)
	// Newest first: walk the append-only slice backwards.
	for i := len(s.entries) - 1; i >= 0 && len(matched) < limit; i-- {
		if filter.Matches(s.entries[i]) {
			matched = append(matched, s.entries[i])
		}
	}
	return matched, nil
}

func (s *InMemoryStore) GetByID(_ context.Context, entryID id.EntryID) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[entryID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	entry := s.entries[idx]
	return &entry, nil
}

// Len reports the number of entries appended so far. Test helper.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
