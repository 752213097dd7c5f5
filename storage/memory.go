package storage

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/c360studio/rfpflow/workflow"
)

// MemoryStore is an in-process RunStore for embedded use and tests.
// Snapshots are copied through JSON so callers cannot mutate stored
// state through retained pointers.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string][]byte)}
}

// Put implements RunStore.
func (s *MemoryStore) Put(_ context.Context, state *workflow.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[state.RunID] = data
	return nil
}

// Get implements RunStore.
func (s *MemoryStore) Get(_ context.Context, runID string) (*workflow.State, error) {
	s.mu.RLock()
	data, ok := s.runs[runID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var state workflow.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Delete implements RunStore.
func (s *MemoryStore) Delete(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, runID)
	return nil
}

// List implements RunStore.
func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
