package memory

import (
	"context"
	"sort"
	"sync"

	"solana-sandwich-lab/internal/domain"
	"solana-sandwich-lab/internal/storage"
)

// DetectionStore is an in-memory implementation of storage.DetectionStore.
type DetectionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.DetectionRecord // keyed by detection_id
}

// NewDetectionStore creates a new in-memory detection store.
func NewDetectionStore() *DetectionStore {
	return &DetectionStore{
		data: make(map[string]*domain.DetectionRecord),
	}
}

// Insert adds a new detection. Returns ErrDuplicateKey if detection_id exists.
func (s *DetectionStore) Insert(_ context.Context, record *domain.DetectionRecord) error {
	if record == nil || record.DetectionID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[record.DetectionID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := cloneRecord(record)
	s.data[record.DetectionID] = copy
	return nil
}

// GetByMint retrieves all detections for a mint, ordered by victim slot ASC.
func (s *DetectionStore) GetByMint(_ context.Context, mint string) ([]*domain.DetectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DetectionRecord
	for _, record := range s.data {
		if record.Mint == mint {
			result = append(result, cloneRecord(record))
		}
	}

	sortRecords(result)
	return result, nil
}

// GetByVictim retrieves detections whose victim matches the signature.
func (s *DetectionStore) GetByVictim(_ context.Context, victimSignature string) ([]*domain.DetectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DetectionRecord
	for _, record := range s.data {
		if record.VictimSignature == victimSignature {
			result = append(result, cloneRecord(record))
		}
	}

	sortRecords(result)
	return result, nil
}

// cloneRecord deep-copies a record so callers cannot mutate stored state.
func cloneRecord(record *domain.DetectionRecord) *domain.DetectionRecord {
	copy := *record
	copy.FrontRunSignatures = append([]string(nil), record.FrontRunSignatures...)
	copy.BackRunSignatures = append([]string(nil), record.BackRunSignatures...)
	return &copy
}

func sortRecords(records []*domain.DetectionRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].VictimSlot != records[j].VictimSlot {
			return records[i].VictimSlot < records[j].VictimSlot
		}
		return records[i].DetectionID < records[j].DetectionID
	})
}

var _ storage.DetectionStore = (*DetectionStore)(nil)
