package metrics

import "time"

// Recorder receives counters and latencies from the gate, the verifier
// and the upstream text service.
type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}

// Counter names.
const (
	GateChallenge     = "gate_challenge"
	GateReject        = "gate_reject"
	GateAdmit         = "gate_admit"
	VerifierCacheHit  = "verifier_cache_hit"
	VerifierCacheMiss = "verifier_cache_miss"
	VerifierNegHit    = "verifier_negative_cache_hit"
	ChainError        = "chain_error"
	UpstreamError     = "upstream_error"
)

// Latency names.
const (
	ChainLookup  = "chain_lookup"
	UpstreamCall = "upstream_call"
)
