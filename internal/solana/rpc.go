package solana

import "context"

// RPCClient defines the Solana RPC HTTP interface used by ingestion.
type RPCClient interface {
	// GetTransaction retrieves a confirmed transaction by signature in
	// jsonParsed encoding. Returns (nil, nil) when the transaction is
	// unknown to the node.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)

	// GetSignaturesForAddress retrieves signatures for an address with pagination.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)

	// GetSlot retrieves the current slot.
	GetSlot(ctx context.Context) (uint64, error)
}
