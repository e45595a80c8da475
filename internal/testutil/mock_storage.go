// mock_storage.go - In-memory record store for testing
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/models"
	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/storage"
)

// MockStore implements storage.RecordStore in memory.
type MockStore struct {
	mu      sync.RWMutex
	records map[string]*models.FileRecord

	// SaveErr, when set, is returned by Save.
	SaveErr error
	closed  bool
}

var _ storage.RecordStore = (*MockStore)(nil)

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{records: make(map[string]*models.FileRecord)}
}

func (m *MockStore) Save(_ context.Context, rec *models.FileRecord) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[rec.ID]; exists {
		return fmt.Errorf("duplicate id %s", rec.ID)
	}
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *MockStore) Get(_ context.Context, id string) (*models.FileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	cp := *rec
	return &cp, nil
}

func (m *MockStore) List(_ context.Context, limit int) ([]*models.FileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*models.FileRecord, 0, len(m.records))
	for _, rec := range m.records {
		cp := *rec
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Metadata.CreatedAt.Equal(list[j].Metadata.CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].Metadata.CreatedAt.After(list[j].Metadata.CreatedAt)
	})
	if limit >= 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *MockStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[id]; !exists {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	delete(m.records, id)
	return nil
}

func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("already closed")
	}
	m.closed = true
	return nil
}

// Len returns the number of stored records.
func (m *MockStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
