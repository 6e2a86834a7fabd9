// Package detector finds front-run, back-run, and sandwich patterns in
// a batch of decoded trade facts for one mint.
package detector

import (
	"sort"

	"solana-sandwich-lab/internal/domain"
	"solana-sandwich-lab/internal/lamports"
	"solana-sandwich-lab/internal/ordering"
)

// Config holds the detector tunables. The zero value of any field is a
// valid, degenerate configuration.
type Config struct {
	// MaxSlotGap is the slot distance searched on either side of a
	// candidate victim.
	MaxSlotGap uint64
	// MinVictimAbsSOL is the minimum absolute SOL magnitude a victim
	// trade must reach (alternative to MinVictimAbsToken).
	MinVictimAbsSOL float64
	// MinVictimAbsToken is the minimum absolute token magnitude a
	// victim trade must reach (alternative to MinVictimAbsSOL).
	MinVictimAbsToken float64
	// MinProfitLamports is the aggregate leg profit required to
	// classify a sandwich.
	MinProfitLamports int64
	// MinBotTrades is the number of trades by one signer, anywhere in
	// the batch, required to label the signer a bot.
	MinBotTrades int
}

// DefaultConfig returns the default tunables.
func DefaultConfig() Config {
	return Config{
		MaxSlotGap:        3,
		MinVictimAbsSOL:   0.01,
		MinVictimAbsToken: 100_000_000,
		MinProfitLamports: 10_000,
		MinBotTrades:      2,
	}
}

// slotIndex groups trades by slot and supports ascending range scans,
// the natural access pattern for a ±k-slot window search.
type slotIndex struct {
	slots  []uint64 // ascending
	bySlot map[uint64][]*domain.TradeFact
}

func buildSlotIndex(trades []*domain.TradeFact) *slotIndex {
	idx := &slotIndex{bySlot: make(map[uint64][]*domain.TradeFact)}
	for _, tx := range trades {
		if _, seen := idx.bySlot[tx.Slot]; !seen {
			idx.slots = append(idx.slots, tx.Slot)
		}
		idx.bySlot[tx.Slot] = append(idx.bySlot[tx.Slot], tx)
	}
	sort.Slice(idx.slots, func(i, j int) bool { return idx.slots[i] < idx.slots[j] })
	return idx
}

// scan visits trades of every slot in [from, to] in ascending slot
// order, preserving batch-relative order within a slot.
func (idx *slotIndex) scan(from, to uint64, visit func(slot uint64, tx *domain.TradeFact)) {
	start := sort.Search(len(idx.slots), func(i int) bool { return idx.slots[i] >= from })
	for i := start; i < len(idx.slots) && idx.slots[i] <= to; i++ {
		slot := idx.slots[i]
		for _, tx := range idx.bySlot[slot] {
			visit(slot, tx)
		}
	}
}

// Detect runs windowed sandwich detection over the batch. It is a pure
// function: deterministic for a given batch and config, no side
// effects. Victims are processed, and events emitted, in ascending slot
// order; within a slot, in the batch's relative order.
func Detect(trades []*domain.TradeFact, cfg Config) *domain.DetectionSummary {
	summary := &domain.DetectionSummary{}
	if len(trades) == 0 {
		return summary
	}

	bots := botSigners(trades, cfg.MinBotTrades)
	idx := buildSlotIndex(trades)

	for _, slot := range idx.slots {
		for _, victim := range idx.bySlot[slot] {
			if !analyzeExecution(victim).any() {
				// A fairly-executed trade cannot be a sandwich victim
				continue
			}
			if !magnitudeExceeds(victim, cfg) {
				continue
			}

			startSlot := lamports.SaturatingSub(victim.Slot, cfg.MaxSlotGap)
			endSlot := lamports.SaturatingAdd(victim.Slot, cfg.MaxSlotGap)

			var frontRuns []*domain.TradeFact
			idx.scan(startSlot, victim.Slot, func(prevSlot uint64, tx *domain.TradeFact) {
				if !legQualifies(tx, victim, bots) {
					return
				}
				if prevSlot == victim.Slot && !ordering.Before(tx, victim) {
					return
				}
				if ordering.Before(tx, victim) && tx.Side == victim.Side {
					frontRuns = append(frontRuns, tx)
				}
			})

			if len(frontRuns) > 0 {
				summary.FrontRuns = append(summary.FrontRuns, domain.FrontRunEvent{
					Victim:    victim,
					FrontRuns: frontRuns,
				})
			}

			var backRuns []*domain.TradeFact
			idx.scan(victim.Slot, endSlot, func(nextSlot uint64, tx *domain.TradeFact) {
				if !legQualifies(tx, victim, bots) {
					return
				}
				if nextSlot == victim.Slot && !ordering.After(tx, victim) {
					return
				}
				// Side inequality: equivalent to "opposite" while trades
				// are two-sided; revisit if a third trade kind appears.
				if ordering.After(tx, victim) && tx.Side != victim.Side {
					backRuns = append(backRuns, tx)
				}
			})

			if len(backRuns) > 0 {
				summary.BackRuns = append(summary.BackRuns, domain.BackRunEvent{
					Victim:   victim,
					BackRuns: backRuns,
				})
			}

			var netSol, netTokens int64
			for _, tx := range frontRuns {
				netSol += tx.SolChange
				netTokens += tx.TokenChange
			}
			for _, tx := range backRuns {
				netSol += tx.SolChange
				netTokens += tx.TokenChange
			}

			if len(frontRuns) > 0 && len(backRuns) > 0 && netSol >= cfg.MinProfitLamports {
				summary.Sandwiches = append(summary.Sandwiches, domain.SandwichDetection{
					Victim:        victim,
					FrontRuns:     frontRuns,
					BackRuns:      backRuns,
					NetProfitSol:  netSol,
					NetTokenDelta: netTokens,
				})
			}
		}
	}

	return summary
}

// botSigners computes the global bot-signer set: signers with at least
// minTrades trades anywhere in the batch. The set is finalized before
// the windowed search starts and read-only afterwards.
func botSigners(trades []*domain.TradeFact, minTrades int) map[string]struct{} {
	counts := make(map[string]int)
	for _, tx := range trades {
		counts[tx.Signer]++
	}
	bots := make(map[string]struct{})
	for signer, count := range counts {
		if count >= minTrades {
			bots[signer] = struct{}{}
		}
	}
	return bots
}

// legQualifies applies the leg conditions shared by both scan
// directions: distinct from the victim, same mint, bot signer.
func legQualifies(tx, victim *domain.TradeFact, bots map[string]struct{}) bool {
	if tx.Signature == victim.Signature {
		return false
	}
	if tx.Mint != victim.Mint {
		return false
	}
	_, isBot := bots[tx.Signer]
	return isBot
}

// executionBreach records which of the trade's declared limits its
// observed outcome violated.
type executionBreach struct {
	priceLimit  bool
	amountLimit bool
}

func (b executionBreach) any() bool {
	return b.priceLimit || b.amountLimit
}

// analyzeExecution compares a trade's outcome against its declared
// intent. For a buy: spending above the max cost, or receiving fewer
// tokens than requested. For a sell: receiving below the min proceeds,
// or giving up more tokens than offered.
func analyzeExecution(tx *domain.TradeFact) executionBreach {
	switch tx.Side {
	case domain.SideBuy:
		spent := lamports.Negative(tx.SolChange)
		received := lamports.Positive(tx.TokenChange)
		return executionBreach{
			priceLimit:  spent > tx.SolLimit,
			amountLimit: received < tx.TokenRequested,
		}
	default:
		received := lamports.Positive(tx.SolChange)
		sold := lamports.Negative(tx.TokenChange)
		return executionBreach{
			priceLimit:  received < tx.SolLimit,
			amountLimit: sold > tx.TokenRequested,
		}
	}
}

// magnitudeExceeds filters noise trades too small to analyze: the trade
// passes when either its SOL magnitude or its token magnitude reaches
// the configured minimum.
func magnitudeExceeds(tx *domain.TradeFact, cfg Config) bool {
	if lamports.AbsSOL(tx.SolChange) >= cfg.MinVictimAbsSOL {
		return true
	}
	tokens := float64(tx.TokenChange)
	if tokens < 0 {
		tokens = -tokens
	}
	return tokens >= cfg.MinVictimAbsToken
}
