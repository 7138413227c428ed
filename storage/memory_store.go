package storage

import (
	"context"
	"sync"

	"rental-aggregator/models"
)

// MemoryStore keeps the latest dataset in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	latest *models.Dataset
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(_ context.Context, ds *models.Dataset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = ds
	return nil
}

func (m *MemoryStore) Latest(_ context.Context) (*models.Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest == nil {
		return nil, ErrNoSnapshot
	}
	return m.latest, nil
}
