package solana

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// DecodePubkey decodes a base-58 address and verifies it is 32 bytes.
func DecodePubkey(address string) ([]byte, error) {
	raw, err := base58.Decode(address)
	if err != nil {
		return nil, fmt.Errorf("decode pubkey %q: %w", address, err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("pubkey %q: expected 32 bytes, got %d", address, len(raw))
	}
	return raw, nil
}

// IsValidPubkey reports whether address is a well-formed 32-byte
// base-58 public key.
func IsValidPubkey(address string) bool {
	_, err := DecodePubkey(address)
	return err == nil
}

// IsOnCurve reports whether the address decodes to a point on the
// ed25519 curve. Wallet addresses are on-curve; program-derived
// addresses (bonding curve accounts, token vaults) are not.
func IsOnCurve(address string) bool {
	raw, err := DecodePubkey(address)
	if err != nil {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}
