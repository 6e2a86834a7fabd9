package main

import (
	"solana-sandwich-lab/internal/domain"
	"solana-sandwich-lab/internal/lamports"
)

// fixtureMint labels the demo batch when no ledger is consulted.
const fixtureMint = "DemoMint1111111111111111111111111111111111"

// fixtureTrades is a self-contained sandwich: a bot buys just before a
// victim in the same slot, the victim breaches both declared limits,
// and the bot exits one slot later at a profit.
func fixtureTrades() []*domain.TradeFact {
	const bot = "BotSigner111111111111111111111111111111111"

	return []*domain.TradeFact{
		{
			Signature:      "FrontRunDemoSignature111111111111111111111",
			Slot:           1000,
			Signer:         bot,
			Mint:           fixtureMint,
			Side:           domain.SideBuy,
			TokenRequested: 900,
			SolLimit:       6 * lamports.PerSOL,
			SolChange:      -6 * lamports.PerSOL,
			TokenChange:    900,
		},
		{
			Signature:      "VictimDemoSignature11111111111111111111111",
			Slot:           1000,
			Signer:         "VictimSigner11111111111111111111111111111",
			Mint:           fixtureMint,
			Side:           domain.SideBuy,
			TokenRequested: 2000,
			SolLimit:       10 * lamports.PerSOL,
			SolChange:      -12 * lamports.PerSOL,
			TokenChange:    1800,
		},
		{
			Signature:      "BackRunDemoSignature1111111111111111111111",
			Slot:           1001,
			Signer:         bot,
			Mint:           fixtureMint,
			Side:           domain.SideSell,
			TokenRequested: 900,
			SolLimit:       8 * lamports.PerSOL,
			SolChange:      8 * lamports.PerSOL,
			TokenChange:    -900,
		},
	}
}
