package store

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/interestmap/pkg/graph"
)

// MemoryStore keeps snapshots in a map.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]graph.Snapshot
	now   func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]graph.Snapshot), now: time.Now}
}

func (s *MemoryStore) Save(ctx context.Context, snap graph.Snapshot) (graph.Snapshot, error) {
	snap, err := prepare(snap, s.now)
	if err != nil {
		return graph.Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.ID] = snap
	return snap, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (graph.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[id]
	if !ok {
		return graph.Snapshot{}, notFound(id)
	}
	return snap, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.snaps))
	for _, snap := range s.snaps {
		out = append(out, Summarize(snap))
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snaps[id]; !ok {
		return notFound(id)
	}
	delete(s.snaps, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
