package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-sandwich-lab/internal/domain"
	"solana-sandwich-lab/internal/storage"
)

func tradeFact(mint, sig string, slot uint64) *domain.TradeFact {
	return &domain.TradeFact{
		Signature:      sig,
		Slot:           slot,
		Signer:         "Signer" + sig,
		Mint:           mint,
		Side:           domain.SideBuy,
		TokenRequested: 1_000_000_000,
		SolLimit:       2_000_000_000,
		SolChange:      -1_900_000_000,
		TokenChange:    950_000_000,
	}
}

func TestTradeFactStore_InsertAndGetByMint(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTradeFactStore(pool)

	fact := tradeFact("MintA", "Sig1", 100)
	require.NoError(t, store.Insert(ctx, fact))

	facts, err := store.GetByMint(ctx, "MintA")
	require.NoError(t, err)

	require.Len(t, facts, 1)
	assert.Equal(t, fact.Signature, facts[0].Signature)
	assert.Equal(t, fact.Slot, facts[0].Slot)
	assert.Equal(t, fact.Signer, facts[0].Signer)
	assert.Equal(t, fact.Side, facts[0].Side)
	assert.Equal(t, fact.TokenRequested, facts[0].TokenRequested)
	assert.Equal(t, fact.SolLimit, facts[0].SolLimit)
	assert.Equal(t, fact.SolChange, facts[0].SolChange)
	assert.Equal(t, fact.TokenChange, facts[0].TokenChange)
}

func TestTradeFactStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTradeFactStore(pool)

	require.NoError(t, store.Insert(ctx, tradeFact("MintA", "Sig1", 100)))

	err := store.Insert(ctx, tradeFact("MintA", "Sig1", 999))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Same signature under a different mint is a distinct key
	require.NoError(t, store.Insert(ctx, tradeFact("MintB", "Sig1", 100)))
}

func TestTradeFactStore_InsertBulk_RollsBackOnDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTradeFactStore(pool)

	require.NoError(t, store.Insert(ctx, tradeFact("MintA", "Sig2", 101)))

	batch := []*domain.TradeFact{
		tradeFact("MintA", "Sig1", 100),
		tradeFact("MintA", "Sig2", 101), // already stored
	}
	err := store.InsertBulk(ctx, batch)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	facts, err := store.GetByMint(ctx, "MintA")
	require.NoError(t, err)
	require.Len(t, facts, 1, "failed batch must leave no partial rows")
	assert.Equal(t, "Sig2", facts[0].Signature)
}

func TestTradeFactStore_OrderingAndSlotRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTradeFactStore(pool)

	batch := []*domain.TradeFact{
		tradeFact("MintA", "SigZ", 100),
		tradeFact("MintA", "SigA", 100),
		tradeFact("MintA", "SigM", 99),
		tradeFact("MintA", "SigQ", 103),
	}
	require.NoError(t, store.InsertBulk(ctx, batch))

	facts, err := store.GetByMint(ctx, "MintA")
	require.NoError(t, err)
	require.Len(t, facts, 4)
	assert.Equal(t, "SigM", facts[0].Signature)
	assert.Equal(t, "SigA", facts[1].Signature)
	assert.Equal(t, "SigZ", facts[2].Signature)
	assert.Equal(t, "SigQ", facts[3].Signature)

	ranged, err := store.GetBySlotRange(ctx, "MintA", 100, 100)
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.Equal(t, "SigA", ranged[0].Signature)
	assert.Equal(t, "SigZ", ranged[1].Signature)
}
