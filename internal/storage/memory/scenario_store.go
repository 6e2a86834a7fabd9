package memory

import (
	"context"
	"sync"

	"solana-sandwich-lab/internal/domain"
	"solana-sandwich-lab/internal/storage"
)

// ScenarioStore is an in-memory implementation of storage.ScenarioStore.
type ScenarioStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ScenarioResult // keyed by run_id
}

// NewScenarioStore creates a new in-memory scenario store.
func NewScenarioStore() *ScenarioStore {
	return &ScenarioStore{
		data: make(map[string]*domain.ScenarioResult),
	}
}

// InsertRun adds a finished scenario. Returns ErrDuplicateKey if run_id exists.
func (s *ScenarioStore) InsertRun(_ context.Context, result *domain.ScenarioResult) error {
	if result == nil || result.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[result.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[result.RunID] = cloneResult(result)
	return nil
}

// GetByRunID retrieves a scenario by its run ID. Returns ErrNotFound if not exists.
func (s *ScenarioStore) GetByRunID(_ context.Context, runID string) (*domain.ScenarioResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneResult(result), nil
}

// cloneResult deep-copies a result so callers cannot mutate stored state.
func cloneResult(result *domain.ScenarioResult) *domain.ScenarioResult {
	copy := *result
	copy.BackRuns = append([]domain.BackRunStage(nil), result.BackRuns...)
	return &copy
}

var _ storage.ScenarioStore = (*ScenarioStore)(nil)
