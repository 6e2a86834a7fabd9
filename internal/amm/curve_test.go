package amm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-sandwich-lab/internal/lamports"
)

func TestNewCurveState_Genesis(t *testing.T) {
	c := NewCurveState()
	assert.Equal(t, uint64(30*lamports.PerSOL), c.VirtualSol)
	assert.Equal(t, uint64(1_073_000_000*TokenDecimals), c.VirtualToken)
	assert.Equal(t, uint64(0), c.RealSol)
	assert.Equal(t, uint64(793_100_000*TokenDecimals), c.RealToken)
}

func TestBuy_GenesisOneSOL(t *testing.T) {
	c := NewCurveState()
	out := c.Buy(1*lamports.PerSOL, 0)

	// fee = 3_000_000, priced input = 997_000_000
	require.Equal(t, uint64(34_512_404_426_234), out)
	assert.Equal(t, uint64(30_997_000_000), c.VirtualSol)
	assert.Equal(t, uint64(1_038_487_595_573_766), c.VirtualToken)
	assert.Equal(t, uint64(1_000_000_000), c.RealSol, "real custody includes the fee")
	assert.Equal(t, uint64(758_587_595_573_766), c.RealToken)
}

func TestBuy_SlippageRejection(t *testing.T) {
	c := NewCurveState()
	exact := c.Buy(1*lamports.PerSOL, 0)
	require.NotZero(t, exact)

	fresh := NewCurveState()
	snapshot := fresh
	out := fresh.Buy(1*lamports.PerSOL, exact+1)
	assert.Zero(t, out)
	assert.Equal(t, snapshot, fresh, "a rejected trade must not move the reserves")

	// The exact output is still acceptable
	out = fresh.Buy(1*lamports.PerSOL, exact)
	assert.Equal(t, exact, out)
}

func TestSell_SlippageRejection(t *testing.T) {
	c := NewCurveState()
	tokens := c.Buy(1*lamports.PerSOL, 0)
	require.NotZero(t, tokens)

	snapshot := c
	out := c.Sell(tokens, 1*lamports.PerSOL) // asks for more than the curve returns
	assert.Zero(t, out)
	assert.Equal(t, snapshot, c)
}

func TestBuySellRoundTrip_FeesOnly(t *testing.T) {
	c := NewCurveState()
	tokens := c.Buy(1*lamports.PerSOL, 0)
	require.Equal(t, uint64(34_512_404_426_234), tokens)

	solOut := c.Sell(tokens, 0)
	require.Equal(t, uint64(994_104_924), solOut)

	// The round trip loses only fees: the seller gets back less than
	// deposited, and the virtual SOL reserve ends within one buy fee of
	// where it started.
	assert.Less(t, solOut, uint64(1*lamports.PerSOL))
	assert.Equal(t, uint64(30_002_895_076), c.VirtualSol)
	assert.LessOrEqual(t, c.VirtualSol, uint64(30*lamports.PerSOL+3_000_000))

	// All tokens returned to the curve's custody
	assert.Equal(t, uint64(793_100_000*TokenDecimals), c.RealToken)
}

func TestBuy_PriceMonotonicity(t *testing.T) {
	c := NewCurveState()
	prev := c.Price()
	require.Greater(t, prev, 0.0)

	for i := 0; i < 5; i++ {
		out := c.Buy(10*lamports.PerSOL, 0)
		require.NotZero(t, out)
		next := c.Price()
		assert.Greater(t, next, prev, "each buy must raise the spot price")
		prev = next
	}
}

func TestBuy_LargerBuyWorsePerUnit(t *testing.T) {
	small := NewCurveState()
	big := NewCurveState()

	perUnitSmall := float64(small.Buy(1*lamports.PerSOL, 0)) / 1
	perUnitBig := float64(big.Buy(20*lamports.PerSOL, 0)) / 20

	assert.Greater(t, perUnitSmall, perUnitBig, "price impact grows with size")
}

func TestZeroInput(t *testing.T) {
	c := NewCurveState()
	snapshot := c
	assert.Zero(t, c.Buy(0, 0))
	assert.Zero(t, c.Sell(0, 0))
	assert.Equal(t, snapshot, c)
}

func TestDustInput_FeeFloor(t *testing.T) {
	c := NewCurveState()
	snapshot := c
	// One lamport is consumed entirely by the fee floor
	assert.Zero(t, c.Buy(1, 0))
	assert.Equal(t, snapshot, c)
}

func TestPrice_Genesis(t *testing.T) {
	c := NewCurveState()
	assert.InDelta(t, 2.7959e-5, c.Price(), 1e-9)

	drained := CurveState{VirtualSol: 1, VirtualToken: 0}
	assert.Equal(t, 0.0, drained.Price())
}
