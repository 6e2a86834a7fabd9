// Package simulation replays a hypothetical sandwich attack against
// fresh bonding-curve reserves to quantify what the attacker extracts
// and nets.
package simulation

import (
	"context"
	"errors"

	"solana-sandwich-lab/internal/amm"
	"solana-sandwich-lab/internal/domain"
	"solana-sandwich-lab/internal/idhash"
	"solana-sandwich-lab/internal/lamports"
	"solana-sandwich-lab/internal/storage"
)

// GasEstimatePerTx is the flat per-transaction cost charged against the
// attacker's proceeds.
const GasEstimatePerTx = 5_000

// Runner errors
var (
	ErrInvalidParams = errors.New("scenario parameters out of range")
)

// Params describes one hypothetical attack scenario.
type Params struct {
	// VictimSolIn is the victim's gross buy amount in lamports.
	VictimSolIn uint64
	// FrontFractionBps sizes the front-run as a fraction of the victim
	// buy, in basis points.
	FrontFractionBps uint64
	// BaseSlot anchors the replayed sequence for labeling and run IDs.
	BaseSlot uint64
}

// DefaultParams returns the standard scenario shape for a victim buy:
// a front-run at 20% of the victim's size.
func DefaultParams(victimSolIn uint64) Params {
	return Params{
		VictimSolIn:      victimSolIn,
		FrontFractionBps: 2_000,
		BaseSlot:         380_000_000,
	}
}

// Runner executes attack scenarios.
type Runner struct {
	scenarioStore storage.ScenarioStore
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	// ScenarioStore receives finished results; nil disables persistence.
	ScenarioStore storage.ScenarioStore
}

// NewRunner creates a scenario runner.
func NewRunner(opts RunnerOptions) *Runner {
	return &Runner{
		scenarioStore: opts.ScenarioStore,
	}
}

// Run replays one front-run / victim / staged back-run sequence on
// genesis reserves.
// Steps:
//  1. Derive the victim's slippage floor from the buy size
//  2. Execute the victim's buy alone on a forked curve (baseline)
//  3. Execute front-run buy, then the victim's buy, on the attacked curve
//  4. Value the victim's token shortfall at the post-victim price
//  5. Stage the attacker's exit: a break-even sell, then a profit sell
//  6. Persist the result when a store is configured
func (r *Runner) Run(ctx context.Context, p Params) (*domain.ScenarioResult, error) {
	if p.VictimSolIn == 0 || p.FrontFractionBps == 0 || p.FrontFractionBps > 10_000 {
		return nil, ErrInvalidParams
	}

	// 1. Half the nominal tokens-per-SOL at par, in token base units
	victimMinTokens := (p.VictimSolIn / 2) * amm.TokenDecimals / lamports.PerSOL

	curve := amm.NewCurveState()

	// 2. Baseline: the victim trades against untouched reserves
	baseline := curve
	baselineTokens := baseline.Buy(p.VictimSolIn, victimMinTokens)

	// 3. Attacked execution
	frontSol := p.VictimSolIn * p.FrontFractionBps / 10_000
	frontTokens := curve.Buy(frontSol, 0)
	victimTokens := curve.Buy(p.VictimSolIn, victimMinTokens)

	// 4. The shortfall is what the front-run displaced; valued at the
	// spot price the victim actually moved the market to.
	shortfall := lamports.SaturatingSub(baselineTokens, victimTokens)
	extracted := uint64(float64(shortfall) * curve.Price())

	result := &domain.ScenarioResult{
		RunID:             idhash.ComputeScenarioRunID(p.VictimSolIn, p.FrontFractionBps, p.BaseSlot),
		VictimSolIn:       p.VictimSolIn,
		VictimMinTokens:   victimMinTokens,
		BaselineTokensOut: baselineTokens,
		FrontRunSolIn:     frontSol,
		FrontRunTokensOut: frontTokens,
		VictimTokensOut:   victimTokens,
		ExtractedLamports: extracted,
	}

	// 5. Exit in two stages. The first sell asks for half the total
	// cost basis back as its floor; the second dumps the remainder
	// unconditionally. Entry cost and gas are attributed half to each.
	breakEvenNeeded := frontSol + 2*GasEstimatePerTx
	stageCost := int64(frontSol)/2 + GasEstimatePerTx

	beTokens := frontTokens / 2
	beSol := curve.Sell(beTokens, breakEvenNeeded/2)
	result.BackRuns = append(result.BackRuns, domain.BackRunStage{
		TokensSold:  beTokens,
		SolReceived: beSol,
		NetLamports: int64(beSol) - stageCost,
		PriceAfter:  curve.Price(),
	})

	profitTokens := frontTokens - beTokens
	profitSol := curve.Sell(profitTokens, 0)
	result.BackRuns = append(result.BackRuns, domain.BackRunStage{
		TokensSold:  profitTokens,
		SolReceived: profitSol,
		NetLamports: int64(profitSol) - stageCost,
		PriceAfter:  curve.Price(),
	})

	for _, stage := range result.BackRuns {
		result.AttackerNetLamports += stage.NetLamports
	}

	// 6. Persist
	if r.scenarioStore != nil {
		if err := r.scenarioStore.InsertRun(ctx, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}
