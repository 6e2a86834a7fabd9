package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"solana-sandwich-lab/internal/domain"
	"solana-sandwich-lab/internal/storage"
)

// ScenarioStore implements storage.ScenarioStore using PostgreSQL.
type ScenarioStore struct {
	pool *Pool
}

// NewScenarioStore creates a new ScenarioStore.
func NewScenarioStore(pool *Pool) *ScenarioStore {
	return &ScenarioStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ScenarioStore = (*ScenarioStore)(nil)

// InsertRun adds a finished scenario. Returns ErrDuplicateKey if run_id exists.
// Back-run stages are stored as a JSONB document; their count is scenario-shaped,
// not schema-shaped.
func (s *ScenarioStore) InsertRun(ctx context.Context, result *domain.ScenarioResult) error {
	if result == nil || result.RunID == "" {
		return storage.ErrInvalidInput
	}

	backRuns, err := json.Marshal(result.BackRuns)
	if err != nil {
		return fmt.Errorf("marshal back-run stages: %w", err)
	}

	query := `
		INSERT INTO scenario_runs (
			run_id, victim_sol_in, victim_min_tokens, baseline_tokens_out,
			front_run_sol_in, front_run_tokens_out, victim_tokens_out,
			extracted_lamports, back_runs, attacker_net_lamports
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = s.pool.Exec(ctx, query,
		result.RunID,
		result.VictimSolIn,
		result.VictimMinTokens,
		result.BaselineTokensOut,
		result.FrontRunSolIn,
		result.FrontRunTokensOut,
		result.VictimTokensOut,
		result.ExtractedLamports,
		backRuns,
		result.AttackerNetLamports,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert scenario run: %w", err)
	}
	return nil
}

// GetByRunID retrieves a scenario by its run ID. Returns ErrNotFound if not exists.
func (s *ScenarioStore) GetByRunID(ctx context.Context, runID string) (*domain.ScenarioResult, error) {
	query := `
		SELECT run_id, victim_sol_in, victim_min_tokens, baseline_tokens_out,
		       front_run_sol_in, front_run_tokens_out, victim_tokens_out,
		       extracted_lamports, back_runs, attacker_net_lamports
		FROM scenario_runs
		WHERE run_id = $1
	`

	var result domain.ScenarioResult
	var backRuns []byte

	err := s.pool.QueryRow(ctx, query, runID).Scan(
		&result.RunID,
		&result.VictimSolIn,
		&result.VictimMinTokens,
		&result.BaselineTokensOut,
		&result.FrontRunSolIn,
		&result.FrontRunTokensOut,
		&result.VictimTokensOut,
		&result.ExtractedLamports,
		&backRuns,
		&result.AttackerNetLamports,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get scenario run: %w", err)
	}

	if err := json.Unmarshal(backRuns, &result.BackRuns); err != nil {
		return nil, fmt.Errorf("unmarshal back-run stages: %w", err)
	}

	return &result, nil
}
