package pumpfun

import (
	"encoding/binary"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-sandwich-lab/internal/domain"
	"solana-sandwich-lab/internal/solana"
)

// encodeTradeData builds a base-58 instruction payload. A non-zero
// framing byte count prepends that many filler bytes before the
// discriminator.
func encodeTradeData(disc [8]byte, amount, limit uint64, framing int) string {
	raw := make([]byte, 0, framing+8+argsLen)
	for i := 0; i < framing; i++ {
		raw = append(raw, 0xEE)
	}
	raw = append(raw, disc[:]...)
	raw = binary.LittleEndian.AppendUint64(raw, amount)
	raw = binary.LittleEndian.AppendUint64(raw, limit)
	return base58.Encode(raw)
}

func TestDecodeInstructionData_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		disc    [8]byte
		side    domain.TradeSide
		framing int
	}{
		{"buy", buyDiscriminator, domain.SideBuy, 0},
		{"sell", sellDiscriminator, domain.SideSell, 0},
		{"buy with framing byte", buyDiscriminator, domain.SideBuy, 1},
		{"sell with framing byte", sellDiscriminator, domain.SideSell, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodeTradeData(tt.disc, 123456789, 42_000_000, tt.framing)
			decoded := DecodeInstructionData(data)
			require.NotNil(t, decoded)
			assert.Equal(t, tt.side, decoded.Side)
			assert.Equal(t, uint64(123456789), decoded.TokenRequested)
			assert.Equal(t, uint64(42_000_000), decoded.SolLimit)
		})
	}
}

func TestDecodeInstructionData_Rejection(t *testing.T) {
	t.Run("too short", func(t *testing.T) {
		assert.Nil(t, DecodeInstructionData(base58.Encode([]byte{1, 2, 3})))
	})

	t.Run("unknown discriminator in both windows", func(t *testing.T) {
		unknown := [8]byte{9, 9, 9, 9, 9, 9, 9, 9}
		assert.Nil(t, DecodeInstructionData(encodeTradeData(unknown, 1, 1, 0)))
		assert.Nil(t, DecodeInstructionData(encodeTradeData(unknown, 1, 1, 1)))
	})

	t.Run("malformed argument layout", func(t *testing.T) {
		raw := append([]byte{}, buyDiscriminator[:]...)
		raw = append(raw, 1, 2, 3) // truncated args
		assert.Nil(t, DecodeInstructionData(base58.Encode(raw)))
	})

	t.Run("not base58", func(t *testing.T) {
		assert.Nil(t, DecodeInstructionData("0OIl-not-base58"))
	})
}

func tradeTx(signer, dataB58 string) *solana.Transaction {
	return &solana.Transaction{
		Slot:      380_000_100,
		Signature: "sig1",
		Message: &solana.TransactionMessage{
			AccountKeys: []string{signer, "SomeOtherKey"},
			Instructions: []solana.Instruction{
				{ProgramID: ProgramID, Data: dataB58},
			},
		},
		Meta: &solana.TransactionMeta{
			PreBalances:  []uint64{5_000_000_000, 1_000_000},
			PostBalances: []uint64{3_987_000_000, 1_000_000},
			PostTokenBalances: []solana.TokenBalance{
				{AccountIndex: 3, Mint: "MintA", Owner: signer, Amount: "900000000"},
			},
		},
	}
}

func TestParseTransaction_TopLevel(t *testing.T) {
	data := encodeTradeData(buyDiscriminator, 1_000_000_000, 1_100_000_000, 0)
	fact := NewParser().ParseTransaction(tradeTx("Signer1", data), "sig1", "MintA")

	require.NotNil(t, fact)
	assert.Equal(t, "sig1", fact.Signature)
	assert.Equal(t, uint64(380_000_100), fact.Slot)
	assert.Equal(t, "Signer1", fact.Signer)
	assert.Equal(t, "MintA", fact.Mint)
	assert.Equal(t, domain.SideBuy, fact.Side)
	assert.Equal(t, uint64(1_000_000_000), fact.TokenRequested)
	assert.Equal(t, uint64(1_100_000_000), fact.SolLimit)
	assert.Equal(t, int64(-1_013_000_000), fact.SolChange)
	assert.Equal(t, int64(900_000_000), fact.TokenChange)
}

func TestParseTransaction_InnerInstructionFallback(t *testing.T) {
	data := encodeTradeData(sellDiscriminator, 500, 1_000, 0)
	tx := tradeTx("Signer1", "") // no decodable top-level payload
	tx.Message.Instructions = []solana.Instruction{
		{ProgramID: "RouterProg", Data: base58.Encode([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9})},
	}
	tx.Meta.InnerInstructions = []solana.InnerInstructionGroup{
		{Index: 0, Instructions: []solana.Instruction{
			{ProgramID: ProgramID, Data: data},
		}},
	}

	fact := NewParser().ParseTransaction(tx, "sig1", "MintA")
	require.NotNil(t, fact)
	assert.Equal(t, domain.SideSell, fact.Side)
	assert.Equal(t, uint64(500), fact.TokenRequested)
}

func TestParseTransaction_NoStructuredMessage(t *testing.T) {
	tx := &solana.Transaction{Slot: 1, Signature: "sig"}
	assert.Nil(t, NewParser().ParseTransaction(tx, "sig", "MintA"))
	assert.Nil(t, NewParser().ParseTransaction(nil, "sig", "MintA"))
}

func TestParseTransaction_NoTradeInstruction(t *testing.T) {
	tx := tradeTx("Signer1", base58.Encode([]byte{9, 9, 9, 9, 9, 9, 9, 9, 1, 1}))
	assert.Nil(t, NewParser().ParseTransaction(tx, "sig1", "MintA"))
}

func TestParseTransaction_TokenDeltaSummedAcrossAccounts(t *testing.T) {
	data := encodeTradeData(sellDiscriminator, 2_000, 10, 0)
	tx := tradeTx("Signer1", data)
	tx.Meta.PreTokenBalances = []solana.TokenBalance{
		{AccountIndex: 3, Mint: "MintA", Owner: "Signer1", Amount: "1500"},
		{AccountIndex: 4, Mint: "MintA", Owner: "Signer1", Amount: "500"},
		{AccountIndex: 5, Mint: "MintA", Owner: "SomebodyElse", Amount: "9999"},
		{AccountIndex: 6, Mint: "OtherMint", Owner: "Signer1", Amount: "777"},
	}
	tx.Meta.PostTokenBalances = []solana.TokenBalance{
		{AccountIndex: 3, Mint: "MintA", Owner: "Signer1", Amount: "0"},
	}

	fact := NewParser().ParseTransaction(tx, "sig1", "MintA")
	require.NotNil(t, fact)
	assert.Equal(t, int64(-2000), fact.TokenChange)
}

func TestParseTransaction_MissingTokenBalances(t *testing.T) {
	data := encodeTradeData(buyDiscriminator, 100, 200, 0)
	tx := tradeTx("Signer1", data)
	tx.Meta.PreTokenBalances = nil
	tx.Meta.PostTokenBalances = nil

	fact := NewParser().ParseTransaction(tx, "sig1", "MintA")
	require.NotNil(t, fact, "missing token telemetry must not fail the decode")
	assert.Equal(t, int64(0), fact.TokenChange)
}

func TestParseTransaction_MissingMeta(t *testing.T) {
	data := encodeTradeData(buyDiscriminator, 100, 200, 0)
	tx := tradeTx("Signer1", data)
	tx.Meta = nil

	fact := NewParser().ParseTransaction(tx, "sig1", "MintA")
	require.NotNil(t, fact)
	assert.Equal(t, int64(0), fact.SolChange)
	assert.Equal(t, int64(0), fact.TokenChange)
}

type captureObserver struct {
	facts []*domain.TradeFact
}

func (c *captureObserver) TradeDecoded(fact *domain.TradeFact) {
	c.facts = append(c.facts, fact)
}

func TestParseTransaction_Observer(t *testing.T) {
	obs := &captureObserver{}
	parser := NewParser(WithObserver(obs))

	data := encodeTradeData(buyDiscriminator, 100, 200, 0)
	fact := parser.ParseTransaction(tradeTx("Signer1", data), "sig1", "MintA")

	require.NotNil(t, fact)
	require.Len(t, obs.facts, 1)
	assert.Same(t, fact, obs.facts[0])
}
