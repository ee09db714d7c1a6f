package server

import (
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/interestmap/pkg/errors"
	"github.com/matzehuels/interestmap/pkg/interestmap"
)

// registry holds the live maps by id.
type registry struct {
	mu   sync.RWMutex
	maps map[string]*interestmap.Map
}

func newRegistry() *registry {
	return &registry{maps: make(map[string]*interestmap.Map)}
}

func (r *registry) add(m *interestmap.Map) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.maps[m.ID()]; ok {
		return errors.New(errors.ErrCodeInvalidInput, "map id %q is already in use", m.ID())
	}
	r.maps[m.ID()] = m
	return nil
}

func (r *registry) exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.maps[id]
	return ok
}

func (r *registry) get(id string) (*interestmap.Map, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.maps[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeMapNotFound, "map %q not found", id)
	}
	return m, nil
}

func (r *registry) remove(id string) (*interestmap.Map, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.maps[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeMapNotFound, "map %q not found", id)
	}
	delete(r.maps, id)
	return m, nil
}

// list returns the live maps ordered by id.
func (r *registry) list() []*interestmap.Map {
	r.mu.RLock()
	out := make([]*interestmap.Map, 0, len(r.maps))
	for _, m := range r.maps {
		out = append(out, m)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b *interestmap.Map) int { return strings.Compare(a.ID(), b.ID()) })
	return out
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.maps)
}

// closeAll destroys and forgets every map. Maps are destroyed outside the
// registry lock since Destroy waits for the tick loop.
func (r *registry) closeAll() int {
	r.mu.Lock()
	maps := r.maps
	r.maps = make(map[string]*interestmap.Map)
	r.mu.Unlock()
	for _, m := range maps {
		m.Destroy()
	}
	return len(maps)
}
