package utils

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

const fingerprintBytes = 8

// Fingerprint derives a stable, non-reversible identifier from a payment
// proof header. It is only used to count distinct payers.
func Fingerprint(proof string) string {
	normalized := strings.ToLower(strings.TrimSpace(proof))
	sum := crypto.Keccak256([]byte(normalized))
	return hex.EncodeToString(sum[:fingerprintBytes])
}
