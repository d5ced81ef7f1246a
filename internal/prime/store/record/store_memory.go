package record

import (
	"context"
	"sync"

	"primelab/internal/prime/models"
)

// InMemoryStore keeps records in insertion order. Used by tests and dry runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []*models.Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, rec *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// List returns the records for one algorithm and bit-length in insertion order.
func (s *InMemoryStore) List(_ context.Context, algorithm models.Algorithm, bits int) ([]*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Record
	for _, rec := range s.records {
		if rec.Algorithm == algorithm && rec.Bits == bits {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Count returns the total number of stored records.
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
