package solana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer returns a server answering every RPC call with result.
func newTestServer(t *testing.T, result string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":` + result + `}`))
	}))
}

func TestGetTransaction_JSONParsed(t *testing.T) {
	result := `{
		"slot": 380000100,
		"blockTime": 1735900000,
		"meta": {
			"err": null,
			"preBalances": [5000000000, 1000000],
			"postBalances": [3987000000, 1000000],
			"preTokenBalances": [],
			"postTokenBalances": [
				{"accountIndex": 3, "mint": "MintA", "owner": "Signer1",
				 "uiTokenAmount": {"amount": "900000000", "decimals": 6}}
			],
			"innerInstructions": [
				{"index": 0, "instructions": [
					{"programId": "ProgX", "accounts": ["a", "b"], "data": "3Bxs4h24hBtQy9rw"}
				]}
			],
			"logMessages": ["Program log: Instruction: Buy"]
		},
		"transaction": {
			"signatures": ["sig1"],
			"message": {
				"accountKeys": [
					{"pubkey": "Signer1", "signer": true},
					{"pubkey": "Other", "signer": false}
				],
				"instructions": [
					{"program": "system", "programId": "11111111111111111111111111111111",
					 "parsed": {"type": "transfer"}},
					{"programId": "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P",
					 "accounts": ["x"], "data": "9zAbCdEf"}
				]
			}
		}
	}`
	server := newTestServer(t, result)
	defer server.Close()

	client := NewHTTPClient(server.URL)
	tx, err := client.GetTransaction(context.Background(), "sig1")
	require.NoError(t, err)
	require.NotNil(t, tx)

	assert.Equal(t, uint64(380000100), tx.Slot)
	assert.Equal(t, "sig1", tx.Signature)
	assert.Equal(t, int64(1735900000), tx.BlockTime)

	require.NotNil(t, tx.Message)
	assert.Equal(t, []string{"Signer1", "Other"}, tx.Message.AccountKeys)
	require.Len(t, tx.Message.Instructions, 2)
	// Fully-parsed instructions expose no raw payload
	assert.Empty(t, tx.Message.Instructions[0].Data)
	assert.Equal(t, "9zAbCdEf", tx.Message.Instructions[1].Data)

	require.NotNil(t, tx.Meta)
	assert.Equal(t, []uint64{5000000000, 1000000}, tx.Meta.PreBalances)
	assert.Equal(t, []uint64{3987000000, 1000000}, tx.Meta.PostBalances)
	require.Len(t, tx.Meta.PostTokenBalances, 1)
	assert.Equal(t, "MintA", tx.Meta.PostTokenBalances[0].Mint)
	assert.Equal(t, "Signer1", tx.Meta.PostTokenBalances[0].Owner)
	assert.Equal(t, "900000000", tx.Meta.PostTokenBalances[0].Amount)
	require.Len(t, tx.Meta.InnerInstructions, 1)
	assert.Equal(t, "3Bxs4h24hBtQy9rw", tx.Meta.InnerInstructions[0].Instructions[0].Data)
}

func TestGetTransaction_OpaqueEncoding(t *testing.T) {
	// Base64 envelope: transaction is an array, not an object
	result := `{
		"slot": 5,
		"blockTime": 1700000000,
		"meta": {"err": null},
		"transaction": ["AAECAwQF", "base64"]
	}`
	server := newTestServer(t, result)
	defer server.Close()

	client := NewHTTPClient(server.URL)
	tx, err := client.GetTransaction(context.Background(), "sig2")
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Nil(t, tx.Message, "opaque encoding must yield nil message")
}

func TestGetTransaction_NotFound(t *testing.T) {
	server := newTestServer(t, `null`)
	defer server.Close()

	client := NewHTTPClient(server.URL)
	tx, err := client.GetTransaction(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, tx)
}

func TestGetSignaturesForAddress(t *testing.T) {
	result := `[
		{"signature": "sigA", "slot": 100, "blockTime": 1700000000, "err": null},
		{"signature": "sigB", "slot": 99, "blockTime": null, "err": {"InstructionError": []}}
	]`
	server := newTestServer(t, result)
	defer server.Close()

	client := NewHTTPClient(server.URL)
	sigs, err := client.GetSignaturesForAddress(context.Background(), "Mint", &SignaturesOpts{Limit: 50})
	require.NoError(t, err)
	require.Len(t, sigs, 2)
	assert.Equal(t, "sigA", sigs[0].Signature)
	assert.Equal(t, uint64(100), sigs[0].Slot)
	assert.NotNil(t, sigs[1].Err)
}

func TestCall_RetriesOn429(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":123}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL,
		WithMaxRetries(2),
		WithRetryDelay(time.Millisecond),
	)
	slot, err := client.GetSlot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(123), slot)
	assert.Equal(t, 2, calls)
}

func TestCall_RPCErrorNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"bad params"}}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(time.Millisecond))
	_, err := client.GetSlot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad params")
	assert.Equal(t, 1, calls)
}
