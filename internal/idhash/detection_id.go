package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeDetectionID computes a deterministic detection_id using SHA256.
// Formula: SHA256(kind|mint|victim_signature|victim_slot)
// Returns hex-encoded hash (64 characters).
func ComputeDetectionID(
	kind string,
	mint string,
	victimSignature string,
	victimSlot uint64,
) string {
	data := fmt.Sprintf("%s|%s|%s|%d",
		kind,
		mint,
		victimSignature,
		victimSlot,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
