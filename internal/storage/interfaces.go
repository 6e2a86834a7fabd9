package storage

import (
	"context"

	"solana-sandwich-lab/internal/domain"
)

// TradeFactStore provides access to trade_facts storage.
type TradeFactStore interface {
	// Insert adds a new trade fact. Returns ErrDuplicateKey if (mint, signature) exists.
	Insert(ctx context.Context, fact *domain.TradeFact) error

	// InsertBulk adds multiple facts atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, facts []*domain.TradeFact) error

	// GetByMint retrieves all facts for a mint, ordered by slot ASC, signature ASC.
	GetByMint(ctx context.Context, mint string) ([]*domain.TradeFact, error)

	// GetBySlotRange retrieves facts for a mint within [start, end] (inclusive).
	GetBySlotRange(ctx context.Context, mint string, start, end uint64) ([]*domain.TradeFact, error)
}

// DetectionStore provides access to detections storage.
type DetectionStore interface {
	// Insert adds a new detection. Returns ErrDuplicateKey if detection_id exists.
	Insert(ctx context.Context, record *domain.DetectionRecord) error

	// GetByMint retrieves all detections for a mint, ordered by victim slot ASC.
	GetByMint(ctx context.Context, mint string) ([]*domain.DetectionRecord, error)

	// GetByVictim retrieves detections whose victim matches the signature.
	GetByVictim(ctx context.Context, victimSignature string) ([]*domain.DetectionRecord, error)
}

// ScenarioStore provides access to scenario_runs storage.
type ScenarioStore interface {
	// InsertRun adds a finished scenario. Returns ErrDuplicateKey if run_id exists.
	InsertRun(ctx context.Context, result *domain.ScenarioResult) error

	// GetByRunID retrieves a scenario by its run ID. Returns ErrNotFound if not exists.
	GetByRunID(ctx context.Context, runID string) (*domain.ScenarioResult, error)
}
