// Package pumpfun decodes pump.fun trade transactions into normalized
// trade facts: the intent carried by the instruction payload plus the
// outcome observed in the balance snapshots.
package pumpfun

import (
	"encoding/binary"
	"math/big"

	"github.com/mr-tron/base58"

	"solana-sandwich-lab/internal/domain"
	"solana-sandwich-lab/internal/lamports"
	"solana-sandwich-lab/internal/solana"
)

// ProgramID is the pump.fun bonding-curve program.
const ProgramID = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"

// Anchor instruction discriminators (first 8 bytes of the payload).
var (
	buyDiscriminator  = [8]byte{102, 6, 61, 18, 1, 218, 235, 234}
	sellDiscriminator = [8]byte{51, 230, 133, 164, 1, 127, 131, 173}
)

// probeOffsets are the byte offsets at which the discriminator is
// probed, in priority order. Offset 1 tolerates the single leading
// framing byte some instruction encodings prepend. Adding a future
// offset convention is a data change here, not new control flow.
var probeOffsets = []int{0, 1}

// argsLen is the fixed borsh layout after the discriminator:
// two little-endian u64 fields.
const argsLen = 16

// DecodedTrade is the intent decoded from one trade instruction.
type DecodedTrade struct {
	Side           domain.TradeSide
	TokenRequested uint64
	SolLimit       uint64 // buy: max_sol_cost; sell: min_sol_output
}

// Observer receives per-transaction decode diagnostics. Implementations
// must be safe for whatever concurrency the caller applies across
// transactions.
type Observer interface {
	TradeDecoded(fact *domain.TradeFact)
}

// Parser turns raw ledger transactions into TradeFacts for one mint.
type Parser struct {
	observer Observer
}

// Option configures a Parser.
type Option func(*Parser)

// WithObserver registers a diagnostics observer.
func WithObserver(obs Observer) Option {
	return func(p *Parser) {
		p.observer = obs
	}
}

// NewParser creates a pump.fun transaction parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseTransaction extracts zero-or-one trade fact for mint from a
// confirmed transaction. It returns nil when the transaction has no
// structured message, contains no recognizable trade instruction, or
// cannot be decoded; a malformed transaction never fails the batch.
func (p *Parser) ParseTransaction(tx *solana.Transaction, signature, mint string) *domain.TradeFact {
	if tx == nil || tx.Message == nil || len(tx.Message.AccountKeys) == 0 {
		return nil
	}
	signer := tx.Message.AccountKeys[0]

	decoded := scanInstructions(tx.Message.Instructions)
	if decoded == nil && tx.Meta != nil {
		for _, group := range tx.Meta.InnerInstructions {
			if decoded = scanInstructions(group.Instructions); decoded != nil {
				break
			}
		}
	}
	if decoded == nil {
		return nil
	}

	// Outcome deltas come from the balance snapshots, independently of
	// the decoded intent.
	var solChange, tokenChange int64
	if tx.Meta != nil {
		solChange = computeSolChange(tx.Meta, tx.Message.AccountKeys, signer)
		tokenChange = computeTokenChange(tx.Meta, signer, mint)
	}

	fact := &domain.TradeFact{
		Signature:      signature,
		Slot:           tx.Slot,
		Signer:         signer,
		Mint:           mint,
		Side:           decoded.Side,
		TokenRequested: decoded.TokenRequested,
		SolLimit:       decoded.SolLimit,
		SolChange:      solChange,
		TokenChange:    tokenChange,
	}

	if p.observer != nil {
		p.observer.TradeDecoded(fact)
	}
	return fact
}

// scanInstructions returns the first decodable trade instruction.
func scanInstructions(instructions []solana.Instruction) *DecodedTrade {
	for _, ins := range instructions {
		if ins.Data == "" {
			continue
		}
		if decoded := DecodeInstructionData(ins.Data); decoded != nil {
			return decoded
		}
	}
	return nil
}

// DecodeInstructionData decodes a base-58 instruction payload into a
// trade intent. Returns nil for payloads that are not pump.fun buy or
// sell instructions.
func DecodeInstructionData(dataB58 string) *DecodedTrade {
	raw, err := base58.Decode(dataB58)
	if err != nil {
		return nil
	}
	if len(raw) < 8 {
		return nil
	}

	for _, offset := range probeOffsets {
		if len(raw) < offset+8 {
			continue
		}
		if decoded := tryDecode(raw[offset:offset+8], raw[offset+8:]); decoded != nil {
			return decoded
		}
	}
	return nil
}

// tryDecode matches one discriminator window and deserializes the
// fixed-layout argument record behind it.
func tryDecode(disc, payload []byte) *DecodedTrade {
	if len(payload) != argsLen {
		return nil
	}
	amount := binary.LittleEndian.Uint64(payload[0:8])
	limit := binary.LittleEndian.Uint64(payload[8:16])

	switch [8]byte(disc) {
	case buyDiscriminator:
		return &DecodedTrade{Side: domain.SideBuy, TokenRequested: amount, SolLimit: limit}
	case sellDiscriminator:
		return &DecodedTrade{Side: domain.SideSell, TokenRequested: amount, SolLimit: limit}
	default:
		return nil
	}
}

// computeSolChange derives the signer's lamport delta from the native
// balance snapshots. Missing snapshot entries degrade to zero.
func computeSolChange(meta *solana.TransactionMeta, accountKeys []string, signer string) int64 {
	idx := -1
	for i, key := range accountKeys {
		if key == signer {
			idx = i
			break
		}
	}
	if idx < 0 || idx >= len(meta.PreBalances) || idx >= len(meta.PostBalances) {
		return 0
	}
	return lamports.DiffU64(meta.PostBalances[idx], meta.PreBalances[idx])
}

// computeTokenChange sums the owner's token-balance entries for mint on
// both sides of the transaction. A signer may hold more than one token
// account for the same mint, so entries are summed. When neither side
// has an entry for the owner/mint pair the delta is unavailable and
// reported as zero.
func computeTokenChange(meta *solana.TransactionMeta, owner, mint string) int64 {
	pre, preFound := tokenTotal(meta.PreTokenBalances, owner, mint)
	post, postFound := tokenTotal(meta.PostTokenBalances, owner, mint)
	if !preFound && !postFound {
		return 0
	}
	return lamports.ClampBig(new(big.Int).Sub(post, pre))
}

// tokenTotal sums amounts over balance entries matching owner and mint.
func tokenTotal(balances []solana.TokenBalance, owner, mint string) (*big.Int, bool) {
	total := new(big.Int)
	found := false
	for _, b := range balances {
		if b.Mint != mint || b.Owner == "" || b.Owner != owner {
			continue
		}
		amount, ok := new(big.Int).SetString(b.Amount, 10)
		if !ok {
			continue
		}
		total.Add(total, amount)
		found = true
	}
	return total, found
}
