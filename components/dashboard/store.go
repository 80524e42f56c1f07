package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Storage keys for the two persisted collections.
const (
	WidgetsKey = "dashboard_widgets"
	LayoutKey  = "dashboard_layout"
)

// MemoryStore is a concurrency-safe in-memory KeyValueStore.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Get returns the stored value and whether it exists.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[key]
	return value, ok, nil
}

// Set stores value under key.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// readCollection decodes a JSON array stored under key. A missing key yields an
// empty collection and no error.
func readCollection[T any](ctx context.Context, store KeyValueStore, key string) ([]T, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return []T{}, fmt.Errorf("dashboard: read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []T{}, fmt.Errorf("dashboard: decode %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func writeCollection[T any](ctx context.Context, store KeyValueStore, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("dashboard: encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("dashboard: write %s: %w", key, err)
	}
	return nil
}
