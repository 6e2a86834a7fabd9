package domain

// TradeSide is the direction of a pump.fun trade.
type TradeSide string

// Trade side constants
const (
	SideBuy  TradeSide = "buy"
	SideSell TradeSide = "sell"
)

// Opposite returns the other side of a two-sided market.
func (s TradeSide) Opposite() TradeSide {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// TradeFact is the normalized record of one executed pump.fun trade:
// the intent decoded from the instruction payload plus the outcome
// derived from the transaction's balance snapshots. Instances are
// immutable once decoded.
//
// The intent and outcome fields are computed independently and may
// legitimately diverge; divergence in the trader's disfavor is what
// the detector flags.
type TradeFact struct {
	// Identifiers
	Signature string // transaction signature
	Slot      uint64 // containing slot
	Signer    string // fee payer / first account key
	Mint      string // token mint being analyzed

	// Intent (from the instruction payload)
	Side            TradeSide
	TokenRequested  uint64 // token amount the trader asked for
	SolLimit        uint64 // buy: max lamports to spend; sell: min lamports to receive

	// Outcome (from pre/post balance snapshots)
	SolChange   int64 // signer lamport delta, positive = received
	TokenChange int64 // signer token delta for Mint, positive = received
}
