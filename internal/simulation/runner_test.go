package simulation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-sandwich-lab/internal/lamports"
	"solana-sandwich-lab/internal/storage/memory"
)

func TestRun_OneSOLVictim(t *testing.T) {
	runner := NewRunner(RunnerOptions{})
	ctx := context.Background()

	result, err := runner.Run(ctx, DefaultParams(1*lamports.PerSOL))
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, uint64(1*lamports.PerSOL), result.VictimSolIn)
	assert.Equal(t, uint64(500_000), result.VictimMinTokens)

	// Baseline: the victim alone on genesis reserves
	assert.Equal(t, uint64(34_512_404_426_234), result.BaselineTokensOut)

	// Attacked: a 0.2 SOL front-run displaces part of the victim's fill
	assert.Equal(t, uint64(200_000_000), result.FrontRunSolIn)
	assert.Equal(t, uint64(7_084_783_141_386), result.FrontRunTokensOut)
	assert.Equal(t, uint64(34_065_388_032_210), result.VictimTokensOut)
	assert.Less(t, result.VictimTokensOut, result.BaselineTokensOut)

	// Shortfall of 447_016_394_024 base units valued at the post-victim price
	assert.InDelta(t, 13_514_856, float64(result.ExtractedLamports), 1)

	require.Len(t, result.BackRuns, 2)
	be, profit := result.BackRuns[0], result.BackRuns[1]

	assert.Equal(t, uint64(3_542_391_570_693), be.TokensSold)
	assert.Equal(t, uint64(106_413_263), be.SolReceived)
	assert.Equal(t, int64(6_408_263), be.NetLamports)

	assert.Equal(t, uint64(3_542_391_570_693), profit.TokensSold)
	assert.Equal(t, uint64(105_689_764), profit.SolReceived)
	assert.Equal(t, int64(5_684_764), profit.NetLamports)

	// The second stage sells into a market the first stage already moved
	assert.Less(t, profit.PriceAfter, be.PriceAfter)

	assert.Equal(t, int64(12_093_027), result.AttackerNetLamports)
}

func TestRun_Deterministic(t *testing.T) {
	runner := NewRunner(RunnerOptions{})
	ctx := context.Background()

	first, err := runner.Run(ctx, DefaultParams(3*lamports.PerSOL))
	require.NoError(t, err)
	second, err := runner.Run(ctx, DefaultParams(3*lamports.PerSOL))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRun_PersistsThroughStore(t *testing.T) {
	store := memory.NewScenarioStore()
	runner := NewRunner(RunnerOptions{ScenarioStore: store})
	ctx := context.Background()

	result, err := runner.Run(ctx, DefaultParams(1*lamports.PerSOL))
	require.NoError(t, err)

	stored, err := store.GetByRunID(ctx, result.RunID)
	require.NoError(t, err)
	assert.Equal(t, result, stored)

	// A rerun of the identical scenario collides on run_id
	_, err = runner.Run(ctx, DefaultParams(1*lamports.PerSOL))
	assert.Error(t, err)
}

func TestRun_InvalidParams(t *testing.T) {
	runner := NewRunner(RunnerOptions{})
	ctx := context.Background()

	cases := []Params{
		{VictimSolIn: 0, FrontFractionBps: 2000},
		{VictimSolIn: 1 * lamports.PerSOL, FrontFractionBps: 0},
		{VictimSolIn: 1 * lamports.PerSOL, FrontFractionBps: 10_001},
	}
	for _, p := range cases {
		_, err := runner.Run(ctx, p)
		assert.ErrorIs(t, err, ErrInvalidParams)
	}
}

func TestRun_LargerFrontRunExtractsMore(t *testing.T) {
	runner := NewRunner(RunnerOptions{})
	ctx := context.Background()

	small := DefaultParams(1 * lamports.PerSOL)
	small.FrontFractionBps = 1000
	large := DefaultParams(1 * lamports.PerSOL)
	large.FrontFractionBps = 4000

	smallResult, err := runner.Run(ctx, small)
	require.NoError(t, err)
	largeResult, err := runner.Run(ctx, large)
	require.NoError(t, err)

	assert.Greater(t, largeResult.ExtractedLamports, smallResult.ExtractedLamports)
	assert.Less(t, largeResult.VictimTokensOut, smallResult.VictimTokensOut)
}
