// Package amm models the pump.fun constant-product bonding curve with
// integer arithmetic matching on-chain execution.
package amm

import (
	"math/bits"

	"solana-sandwich-lab/internal/lamports"
)

// TokenDecimals is the base-unit scale of a pump.fun token (6 decimals).
const TokenDecimals = 1_000_000

// FeeBps is the protocol fee in basis points, charged on the input
// amount of every trade. minFee is the fee floor for dust inputs.
const (
	FeeBps = 30
	minFee = 1
)

// Genesis reserves of a freshly created bonding curve.
const (
	genesisVirtualSol   = 30 * lamports.PerSOL
	genesisVirtualToken = 1_073_000_000 * TokenDecimals
	genesisRealSol      = 0
	genesisRealToken    = 793_100_000 * TokenDecimals
)

// CurveState is the reserve snapshot of one bonding curve. The virtual
// reserves price trades; the real reserves track actual custody. It is
// a plain value: copying the struct forks an independent simulation.
type CurveState struct {
	VirtualSol   uint64
	VirtualToken uint64
	RealSol      uint64
	RealToken    uint64
}

// NewCurveState returns the genesis state of a bonding curve.
func NewCurveState() CurveState {
	return CurveState{
		VirtualSol:   genesisVirtualSol,
		VirtualToken: genesisVirtualToken,
		RealSol:      genesisRealSol,
		RealToken:    genesisRealToken,
	}
}

// Buy swaps solIn lamports for tokens. The fee is charged on solIn and
// the net amount is priced against the virtual reserves. When the
// output would fall below minTokensOut the trade is rejected: Buy
// returns 0 and the state is left untouched.
func (c *CurveState) Buy(solIn, minTokensOut uint64) uint64 {
	if solIn == 0 || c.VirtualSol == 0 {
		return 0
	}
	afterFee := solIn - fee(solIn)
	tokensOut := swapOutput(afterFee, c.VirtualToken, c.VirtualSol)
	if tokensOut == 0 || tokensOut < minTokensOut {
		return 0
	}

	c.VirtualSol = lamports.SaturatingAdd(c.VirtualSol, afterFee)
	c.VirtualToken = lamports.SaturatingSub(c.VirtualToken, tokensOut)
	// Real custody grows by the gross deposit, fee included
	c.RealSol = lamports.SaturatingAdd(c.RealSol, solIn)
	c.RealToken = lamports.SaturatingSub(c.RealToken, tokensOut)
	return tokensOut
}

// Sell swaps tokensIn for lamports. The fee is charged on tokensIn and
// the net amount is priced against the virtual reserves. When the
// output would fall below minSolOut the trade is rejected: Sell returns
// 0 and the state is left untouched.
func (c *CurveState) Sell(tokensIn, minSolOut uint64) uint64 {
	if tokensIn == 0 || c.VirtualToken == 0 {
		return 0
	}
	afterFee := tokensIn - fee(tokensIn)
	solOut := swapOutput(afterFee, c.VirtualSol, c.VirtualToken)
	if solOut == 0 || solOut < minSolOut {
		return 0
	}

	c.VirtualSol = lamports.SaturatingSub(c.VirtualSol, solOut)
	c.VirtualToken = lamports.SaturatingAdd(c.VirtualToken, afterFee)
	// Real custody receives the gross token deposit
	c.RealToken = lamports.SaturatingAdd(c.RealToken, tokensIn)
	c.RealSol = lamports.SaturatingSub(c.RealSol, solOut)
	return solOut
}

// Price returns the spot price as the virtual reserve ratio, in
// lamports per token base unit. A drained token reserve yields 0.
func (c CurveState) Price() float64 {
	if c.VirtualToken == 0 {
		return 0
	}
	return float64(c.VirtualSol) / float64(c.VirtualToken)
}

// fee computes the input-side protocol fee with the dust floor applied.
func fee(amount uint64) uint64 {
	f := mulDiv(amount, FeeBps, 10_000)
	if f < minFee {
		return minFee
	}
	return f
}

// swapOutput prices in units of reserveOut against the invariant
// product: in * reserveOut / (reserveIn + in), with a 128-bit
// intermediate so the product cannot overflow.
func swapOutput(in, reserveOut, reserveIn uint64) uint64 {
	denom, carry := bits.Add64(reserveIn, in, 0)
	if carry != 0 || denom == 0 {
		return 0
	}
	return mulDiv(in, reserveOut, denom)
}

// mulDiv computes a*b/d with a 128-bit product. The quotient of every
// call site fits in 64 bits because b < d or a < d holds there.
func mulDiv(a, b, d uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		// Quotient would overflow; saturate
		return ^uint64(0)
	}
	q, _ := bits.Div64(hi, lo, d)
	return q
}
