package solana

// SignatureInfo from getSignaturesForAddress.
type SignatureInfo struct {
	Signature string
	Slot      uint64
	BlockTime *int64
	Err       interface{}
}

// SignaturesOpts defines optional pagination parameters for getSignaturesForAddress.
type SignaturesOpts struct {
	Before string // Start searching backwards from this signature
	Until  string // Search until this signature
	Limit  int    // Maximum number of signatures to return
}

// Transaction is a confirmed transaction in jsonParsed encoding, carrying
// everything trade decoding consumes: the instruction stream and the
// pre/post balance snapshots.
type Transaction struct {
	Slot      uint64
	Signature string
	BlockTime int64 // Unix timestamp (seconds)
	Meta      *TransactionMeta
	Message   *TransactionMessage
}

// TransactionMessage is the structured message representation. A nil
// Message means the ledger returned an opaque encoding; callers treat
// that as undecodable.
type TransactionMessage struct {
	AccountKeys  []string // fee payer / signer first
	Instructions []Instruction
}

// Instruction is one top-level or inner instruction. Data holds the
// base-58 payload for compiled and partially-decoded instructions and is
// empty for fully-parsed ones (system/token program), which carry no raw
// bytes to decode.
type Instruction struct {
	ProgramID string
	Accounts  []string
	Data      string
}

// InnerInstructionGroup is the set of CPI instructions emitted by one
// top-level instruction.
type InnerInstructionGroup struct {
	Index        int
	Instructions []Instruction
}

// TokenBalance is one entry of the pre/post token-balance lists.
type TokenBalance struct {
	AccountIndex int
	Mint         string
	Owner        string // empty when the owner could not be resolved
	Amount       string // base-10 integer string in base units
}

// TransactionMeta contains transaction metadata.
type TransactionMeta struct {
	Err               interface{}
	LogMessages       []string
	PreBalances       []uint64
	PostBalances      []uint64
	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance
	InnerInstructions []InnerInstructionGroup
}
