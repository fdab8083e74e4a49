package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/TheCrazyGM/mining-arc/internal/domain"
	"github.com/TheCrazyGM/mining-arc/internal/storage"
)

// RunAggregateStore is an in-memory implementation of storage.RunAggregateStore.
type RunAggregateStore struct {
	mu   sync.RWMutex
	data map[string]*domain.RunAggregate // keyed by run_id
}

// NewRunAggregateStore creates a new in-memory run aggregate store.
func NewRunAggregateStore() *RunAggregateStore {
	return &RunAggregateStore{
		data: make(map[string]*domain.RunAggregate),
	}
}

// Insert adds a new aggregate row. Returns ErrDuplicateKey if run_id exists.
func (s *RunAggregateStore) Insert(_ context.Context, a *domain.RunAggregate) error {
	if a == nil || a.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[a.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *a
	s.data[a.RunID] = &copy
	return nil
}

// GetByToken retrieves all aggregates for a token, ordered by started_at ASC.
func (s *RunAggregateStore) GetByToken(_ context.Context, token string) ([]*domain.RunAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RunAggregate
	for _, a := range s.data {
		if a.Token == token {
			copy := *a
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.Before(result[j].StartedAt)
	})

	return result, nil
}

// GetAll retrieves all aggregates, ordered by started_at ASC.
func (s *RunAggregateStore) GetAll(_ context.Context) ([]*domain.RunAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.RunAggregate, 0, len(s.data))
	for _, a := range s.data {
		copy := *a
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.Before(result[j].StartedAt)
	})

	return result, nil
}

var _ storage.RunAggregateStore = (*RunAggregateStore)(nil)
