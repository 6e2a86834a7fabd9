package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-sandwich-lab/internal/domain"
	"solana-sandwich-lab/internal/storage"
)

func scenarioResult(runID string) *domain.ScenarioResult {
	return &domain.ScenarioResult{
		RunID:             runID,
		VictimSolIn:       1_000_000_000,
		VictimMinTokens:   500_000,
		BaselineTokensOut: 34_512_404_426_234,
		FrontRunSolIn:     200_000_000,
		FrontRunTokensOut: 7_101_694_915_254,
		VictimTokensOut:   34_287_000_000_000,
		ExtractedLamports: 6_300_000,
		BackRuns: []domain.BackRunStage{
			{TokensSold: 3_550_847_457_627, SolReceived: 102_000_000, NetLamports: 1_995_000, PriceAfter: 2.81e-5},
			{TokensSold: 3_550_847_457_627, SolReceived: 101_500_000, NetLamports: 1_495_000, PriceAfter: 2.80e-5},
		},
		AttackerNetLamports: 3_490_000,
	}
}

func TestScenarioStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewScenarioStore(pool)

	result := scenarioResult("run1")
	require.NoError(t, store.InsertRun(ctx, result))

	got, err := store.GetByRunID(ctx, "run1")
	require.NoError(t, err)

	assert.Equal(t, result.VictimSolIn, got.VictimSolIn)
	assert.Equal(t, result.BaselineTokensOut, got.BaselineTokensOut)
	assert.Equal(t, result.ExtractedLamports, got.ExtractedLamports)
	assert.Equal(t, result.AttackerNetLamports, got.AttackerNetLamports)
	require.Len(t, got.BackRuns, 2)
	assert.Equal(t, result.BackRuns[0].TokensSold, got.BackRuns[0].TokensSold)
	assert.Equal(t, result.BackRuns[1].NetLamports, got.BackRuns[1].NetLamports)
	assert.InDelta(t, result.BackRuns[0].PriceAfter, got.BackRuns[0].PriceAfter, 1e-12)
}

func TestScenarioStore_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewScenarioStore(pool)

	_, err := store.GetByRunID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestScenarioStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewScenarioStore(pool)

	require.NoError(t, store.InsertRun(ctx, scenarioResult("run1")))

	err := store.InsertRun(ctx, scenarioResult("run1"))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}
