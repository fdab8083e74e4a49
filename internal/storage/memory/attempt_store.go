// Package memory provides in-memory store implementations. They back
// one-shot runs and tests; nothing here survives the process.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/TheCrazyGM/mining-arc/internal/domain"
	"github.com/TheCrazyGM/mining-arc/internal/storage"
)

// AttemptStore is an in-memory implementation of storage.AttemptStore.
type AttemptStore struct {
	mu   sync.RWMutex
	data map[string]*domain.AttemptRecord // keyed by run_id|account
}

// NewAttemptStore creates a new in-memory attempt store.
func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		data: make(map[string]*domain.AttemptRecord),
	}
}

func attemptKey(a *domain.AttemptRecord) string {
	return a.RunID + "|" + a.Account
}

// Insert adds a new attempt. Returns ErrDuplicateKey if (run_id, account) exists.
func (s *AttemptStore) Insert(_ context.Context, a *domain.AttemptRecord) error {
	if a == nil || a.RunID == "" || a.Account == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := attemptKey(a)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *a
	s.data[key] = &copy
	return nil
}

// InsertBulk adds multiple attempts atomically. Fails entire batch on any duplicate.
func (s *AttemptStore) InsertBulk(_ context.Context, attempts []*domain.AttemptRecord) error {
	if len(attempts) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(attempts))

	for _, a := range attempts {
		if a == nil || a.RunID == "" || a.Account == "" {
			return storage.ErrInvalidInput
		}

		key := attemptKey(a)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, a := range attempts {
		copy := *a
		s.data[attemptKey(a)] = &copy
	}

	return nil
}

// GetByRunID retrieves all attempts for a run, ordered by attempted_at ASC.
func (s *AttemptStore) GetByRunID(_ context.Context, runID string) ([]*domain.AttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AttemptRecord
	for _, a := range s.data {
		if a.RunID == runID {
			copy := *a
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].AttemptedAt.Before(result[j].AttemptedAt)
	})

	return result, nil
}

// GetByAccount retrieves all attempts to an account, ordered by attempted_at ASC.
func (s *AttemptStore) GetByAccount(_ context.Context, account string) ([]*domain.AttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AttemptRecord
	for _, a := range s.data {
		if a.Account == account {
			copy := *a
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].AttemptedAt.Before(result[j].AttemptedAt)
	})

	return result, nil
}

var _ storage.AttemptStore = (*AttemptStore)(nil)
