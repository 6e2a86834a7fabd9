package solana

import "context"

// WSClient defines the Solana WebSocket subscription interface used for
// live signature discovery on a mint.
type WSClient interface {
	// SubscribeLogs subscribes to transaction logs matching the filter.
	// Notifications stop when the client closes.
	SubscribeLogs(ctx context.Context, filter LogsFilter) (<-chan LogNotification, error)

	// Close closes the WebSocket connection and all subscriptions.
	Close() error
}

// LogsFilter defines a logsSubscribe filter.
type LogsFilter struct {
	// Mentions filters to transactions mentioning this address (a mint
	// or program ID). The RPC accepts exactly one.
	Mentions []string
}

// LogNotification is one logsSubscribe message.
type LogNotification struct {
	Signature string
	Slot      uint64
	Logs      []string
	Err       interface{}
}
