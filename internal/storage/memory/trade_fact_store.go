package memory

import (
	"context"
	"fmt"
	"sync"

	"solana-sandwich-lab/internal/domain"
	"solana-sandwich-lab/internal/ordering"
	"solana-sandwich-lab/internal/storage"
)

// TradeFactStore is an in-memory implementation of storage.TradeFactStore.
type TradeFactStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TradeFact // keyed by composite key
}

// NewTradeFactStore creates a new in-memory trade fact store.
func NewTradeFactStore() *TradeFactStore {
	return &TradeFactStore{
		data: make(map[string]*domain.TradeFact),
	}
}

// factKey generates a unique key for a trade fact.
func factKey(mint, signature string) string {
	return fmt.Sprintf("%s|%s", mint, signature)
}

// Insert adds a new fact. Returns ErrDuplicateKey if exists.
func (s *TradeFactStore) Insert(_ context.Context, fact *domain.TradeFact) error {
	if fact == nil || fact.Mint == "" || fact.Signature == "" {
		return storage.ErrInvalidInput
	}

	key := factKey(fact.Mint, fact.Signature)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *fact
	s.data[key] = &copy
	return nil
}

// InsertBulk adds multiple facts atomically. Fails entire batch on any duplicate.
func (s *TradeFactStore) InsertBulk(_ context.Context, facts []*domain.TradeFact) error {
	if len(facts) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(facts))

	// First pass: check for duplicates (existing + intra-batch)
	for _, fact := range facts {
		if fact == nil || fact.Mint == "" || fact.Signature == "" {
			return storage.ErrInvalidInput
		}
		key := factKey(fact.Mint, fact.Signature)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, fact := range facts {
		key := factKey(fact.Mint, fact.Signature)
		copy := *fact
		s.data[key] = &copy
	}

	return nil
}

// GetByMint retrieves all facts for a mint, ordered by slot ASC, signature ASC.
func (s *TradeFactStore) GetByMint(_ context.Context, mint string) ([]*domain.TradeFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeFact
	for _, fact := range s.data {
		if fact.Mint == mint {
			copy := *fact
			result = append(result, &copy)
		}
	}

	ordering.Sort(result)
	return result, nil
}

// GetBySlotRange retrieves facts for a mint within [start, end] (inclusive).
func (s *TradeFactStore) GetBySlotRange(_ context.Context, mint string, start, end uint64) ([]*domain.TradeFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeFact
	for _, fact := range s.data {
		if fact.Mint == mint && fact.Slot >= start && fact.Slot <= end {
			copy := *fact
			result = append(result, &copy)
		}
	}

	ordering.Sort(result)
	return result, nil
}

var _ storage.TradeFactStore = (*TradeFactStore)(nil)
