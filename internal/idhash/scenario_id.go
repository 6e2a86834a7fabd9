package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeScenarioRunID computes a deterministic run_id for one
// simulated attack scenario using SHA256.
// Formula: SHA256(victim_sol_in|front_fraction_bps|base_slot)
// Returns hex-encoded hash (64 characters).
func ComputeScenarioRunID(
	victimSolIn uint64,
	frontFractionBps uint64,
	baseSlot uint64,
) string {
	data := fmt.Sprintf("%d|%d|%d",
		victimSolIn,
		frontFractionBps,
		baseSlot,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
