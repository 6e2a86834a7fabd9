package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-sandwich-lab/internal/domain"
	"solana-sandwich-lab/internal/storage"
)

// DetectionStore implements storage.DetectionStore using PostgreSQL.
type DetectionStore struct {
	pool *Pool
}

// NewDetectionStore creates a new DetectionStore.
func NewDetectionStore(pool *Pool) *DetectionStore {
	return &DetectionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.DetectionStore = (*DetectionStore)(nil)

// Insert adds a new detection. Returns ErrDuplicateKey if detection_id exists.
func (s *DetectionStore) Insert(ctx context.Context, record *domain.DetectionRecord) error {
	if record == nil || record.DetectionID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO detections (
			detection_id, kind, mint, victim_signature, victim_slot,
			front_run_signatures, back_run_signatures, net_profit_sol, net_token_delta
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		record.DetectionID,
		string(record.Kind),
		record.Mint,
		record.VictimSignature,
		record.VictimSlot,
		record.FrontRunSignatures,
		record.BackRunSignatures,
		record.NetProfitSol,
		record.NetTokenDelta,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert detection: %w", err)
	}
	return nil
}

// GetByMint retrieves all detections for a mint, ordered by victim slot ASC.
func (s *DetectionStore) GetByMint(ctx context.Context, mint string) ([]*domain.DetectionRecord, error) {
	query := `
		SELECT detection_id, kind, mint, victim_signature, victim_slot,
		       front_run_signatures, back_run_signatures, net_profit_sol, net_token_delta
		FROM detections
		WHERE mint = $1
		ORDER BY victim_slot ASC, detection_id ASC
	`

	rows, err := s.pool.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("get detections by mint: %w", err)
	}
	defer rows.Close()

	return scanDetections(rows)
}

// GetByVictim retrieves detections whose victim matches the signature.
func (s *DetectionStore) GetByVictim(ctx context.Context, victimSignature string) ([]*domain.DetectionRecord, error) {
	query := `
		SELECT detection_id, kind, mint, victim_signature, victim_slot,
		       front_run_signatures, back_run_signatures, net_profit_sol, net_token_delta
		FROM detections
		WHERE victim_signature = $1
		ORDER BY victim_slot ASC, detection_id ASC
	`

	rows, err := s.pool.Query(ctx, query, victimSignature)
	if err != nil {
		return nil, fmt.Errorf("get detections by victim: %w", err)
	}
	defer rows.Close()

	return scanDetections(rows)
}

// scanDetections scans multiple rows into a slice of DetectionRecord.
func scanDetections(rows pgx.Rows) ([]*domain.DetectionRecord, error) {
	var records []*domain.DetectionRecord

	for rows.Next() {
		var record domain.DetectionRecord
		var kind string

		err := rows.Scan(
			&record.DetectionID,
			&kind,
			&record.Mint,
			&record.VictimSignature,
			&record.VictimSlot,
			&record.FrontRunSignatures,
			&record.BackRunSignatures,
			&record.NetProfitSol,
			&record.NetTokenDelta,
		)
		if err != nil {
			return nil, fmt.Errorf("scan detection row: %w", err)
		}

		record.Kind = domain.DetectionKind(kind)
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate detection rows: %w", err)
	}

	return records, nil
}
