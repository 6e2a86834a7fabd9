package solana

import (
	"bytes"
	"testing"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePubkey(t *testing.T) {
	raw := bytes.Repeat([]byte{7}, 32)
	addr := base58.Encode(raw)

	decoded, err := DecodePubkey(addr)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}

func TestDecodePubkey_Invalid(t *testing.T) {
	_, err := DecodePubkey("not-base58-0OIl")
	assert.Error(t, err)

	// Wrong length
	_, err = DecodePubkey(base58.Encode([]byte{1, 2, 3}))
	assert.Error(t, err)
}

func TestIsValidPubkey(t *testing.T) {
	assert.True(t, IsValidPubkey("So11111111111111111111111111111111111111112"))
	assert.True(t, IsValidPubkey("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"))
	assert.False(t, IsValidPubkey(""))
	assert.False(t, IsValidPubkey("short"))
}

func TestIsOnCurve(t *testing.T) {
	// The ed25519 generator is on-curve by construction
	gen := base58.Encode(edwards25519.NewGeneratorPoint().Bytes())
	assert.True(t, IsOnCurve(gen))

	// A y coordinate above the field prime is not a valid encoding
	assert.False(t, IsOnCurve(base58.Encode(bytes.Repeat([]byte{0xFF}, 32))))

	assert.False(t, IsOnCurve("tooshort"))
}
