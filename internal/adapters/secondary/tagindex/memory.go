package tagindex

import (
	"context"
	"sort"
	"sync"
)

// MemoryTagIndex : implémentation en mémoire pour les tests et le dev local.
// Le mutex donne la même garantie que SADD : l'union est atomique,
// deux Merge concurrents sont tous deux conservés.
type MemoryTagIndex struct {
	mu   sync.Mutex
	tags map[string]struct{}
}

func NewMemoryTagIndex() *MemoryTagIndex {
	return &MemoryTagIndex{tags: make(map[string]struct{})}
}

func (m *MemoryTagIndex) Merge(_ context.Context, tags []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range tags {
		m.tags[t] = struct{}{}
	}
	return nil
}

func (m *MemoryTagIndex) All(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.tags))
	for t := range m.tags {
		out = append(out, t)
	}
	sort.Strings(out) // Ordre stable, pratique pour les assertions
	return out, nil
}
