// Package ledger keeps process-lifetime usage accounting for gated calls.
package ledger

import (
	"sync"
	"sync/atomic"

	"github.com/asterpay/x402/utils"
)

// Snapshot is a point-in-time copy of the ledger.
type Snapshot struct {
	TotalCalls       int64  `json:"totalCalls"`
	PaidCalls        int64  `json:"paidCalls"`
	TotalVolumeMinor int64  `json:"-"`
	TotalVolume      string `json:"totalVolumeUSDC"`
	UniqueUsers      int    `json:"uniqueUsers"`
}

// UsageLedger counts call attempts, admitted calls, admitted volume in
// minor units and distinct payer fingerprints. All methods are safe for
// concurrent use.
type UsageLedger struct {
	totalCalls  atomic.Int64
	paidCalls   atomic.Int64
	volumeMinor atomic.Int64

	mu           sync.RWMutex
	fingerprints map[string]struct{}
}

func New() *UsageLedger {
	return &UsageLedger{
		fingerprints: make(map[string]struct{}),
	}
}

// RecordAttempt counts a call that reached the gate.
func (l *UsageLedger) RecordAttempt() {
	l.totalCalls.Add(1)
}

// RecordPaid counts an admitted call worth minorUnits from the payer
// identified by fingerprint.
func (l *UsageLedger) RecordPaid(minorUnits int64, fingerprint string) {
	l.paidCalls.Add(1)
	l.volumeMinor.Add(minorUnits)

	if fingerprint == "" {
		return
	}
	l.mu.Lock()
	l.fingerprints[fingerprint] = struct{}{}
	l.mu.Unlock()
}

func (l *UsageLedger) Snapshot() Snapshot {
	l.mu.RLock()
	users := len(l.fingerprints)
	l.mu.RUnlock()

	// paidCalls is read before totalCalls so a snapshot never shows more
	// paid calls than attempts.
	paid := l.paidCalls.Load()
	volume := l.volumeMinor.Load()
	total := l.totalCalls.Load()

	return Snapshot{
		TotalCalls:       total,
		PaidCalls:        paid,
		TotalVolumeMinor: volume,
		TotalVolume:      utils.FormatMinorUnits(volume),
		UniqueUsers:      users,
	}
}
