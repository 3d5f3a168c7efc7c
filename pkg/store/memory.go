package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-pluginform/pkg/model"
)

// MemoryStore keeps entries in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]model.FormState
}

// NewMemoryStore seeds a store with copies of entries.
func NewMemoryStore(entries map[string]model.FormState) *MemoryStore {
	s := &MemoryStore{entries: make(map[string]model.FormState, len(entries))}
	for name, data := range entries {
		s.entries[name] = data.Clone()
	}
	return s
}

// Names lists entry names in sorted order.
func (s *MemoryStore) Names(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Load returns a copy of the entry.
func (s *MemoryStore) Load(ctx context.Context, name string) (model.FormState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return data.Clone(), nil
}

// Upsert stores a copy of data under name.
func (s *MemoryStore) Upsert(ctx context.Context, name string, data model.FormState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := checkName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[name] = data.Clone()
	return nil
}

// Delete removes name.
func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(s.entries, name)
	return nil
}
