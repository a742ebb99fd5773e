package verification

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/asterpay/x402/clients"
	"github.com/asterpay/x402/logger"
	"github.com/asterpay/x402/metrics"
	"github.com/asterpay/x402/types"
	"github.com/asterpay/x402/utils"
)

const (
	DefaultCacheSize   = 10000
	DefaultNegativeTTL = 30 * time.Second
	DefaultTimeout     = 10 * time.Second
)

// Verifier decides whether a transaction paid at least minAmount.
type Verifier interface {
	Verify(ctx context.Context, txHash string, minAmount decimal.Decimal) bool
	VerifyDetailed(ctx context.Context, txHash string, minAmount decimal.Decimal) *types.VerificationResult
}

// Config describes the single token/recipient pair payments must target.
type Config struct {
	Network   types.Network
	Token     common.Address
	Recipient common.Address

	// Decimals is the token's on-chain precision, used as given.
	Decimals int32

	// CacheSize bounds the number of VerifiedReceipt entries kept.
	CacheSize int

	// NegativeTTL is how long a failed lookup is remembered. Zero
	// disables negative caching so every retry reaches the chain.
	NegativeTTL time.Duration

	// Timeout bounds each receipt query.
	Timeout time.Duration
}

type Option func(*ReceiptVerifier)

func WithLogger(l logger.Logger) Option {
	return func(v *ReceiptVerifier) {
		v.logger = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(v *ReceiptVerifier) {
		v.metrics = r
	}
}

// WithClock replaces the time source used for ObservedAt and for expiring
// remembered failures.
func WithClock(now func() time.Time) Option {
	return func(v *ReceiptVerifier) {
		v.now = now
	}
}

var _ Verifier = (*ReceiptVerifier)(nil)

// ReceiptVerifier confirms payments by reading transaction receipts and
// caches every qualifying transfer it finds. A transaction's effects never
// change once mined, so a cached entry stays valid forever; eviction only
// costs a repeated chain query.
type ReceiptVerifier struct {
	chain     clients.ChainClient
	network   types.Network
	token     common.Address
	recipient common.Address
	decimals  int32
	timeout   time.Duration

	verified    *lru.Cache[string, types.VerifiedReceipt]
	negative    *lru.Cache[string, failure]
	negativeTTL time.Duration
	flights     singleflight.Group

	logger  logger.Logger
	metrics metrics.Recorder
	now     func() time.Time
}

// failure is a remembered negative outcome.
type failure struct {
	reason  string
	expires time.Time
}

// lookupOutcome is shared by every caller coalesced onto one chain query.
type lookupOutcome struct {
	receipt *types.VerifiedReceipt
	reason  string
}

// NewReceiptVerifier creates a verifier that owns its caches.
func NewReceiptVerifier(chain clients.ChainClient, cfg Config, opts ...Option) (*ReceiptVerifier, error) {
	if chain == nil {
		return nil, &types.X402Error{
			Code:    types.ErrConfigError,
			Message: "chain client is required",
		}
	}

	if cfg.Decimals < 0 {
		return nil, &types.X402Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("token decimals must not be negative, got %d", cfg.Decimals),
		}
	}

	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}

	verified, err := lru.New[string, types.VerifiedReceipt](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create receipt cache: %w", err)
	}

	v := &ReceiptVerifier{
		chain:     chain,
		network:   cfg.Network,
		token:     cfg.Token,
		recipient: cfg.Recipient,
		decimals:  cfg.Decimals,
		timeout:   cfg.Timeout,
		verified:  verified,
		logger:    logger.NoopLogger{},
		metrics:   metrics.NoopRecorder{},
		now:       time.Now,
	}

	if cfg.NegativeTTL > 0 {
		v.negative, err = lru.New[string, failure](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create negative cache: %w", err)
		}
		v.negativeTTL = cfg.NegativeTTL
	}

	for _, opt := range opts {
		opt(v)
	}

	return v, nil
}

// Verify reports whether txHash carries a transfer of at least minAmount
// to the configured recipient. Every failure, including chain errors and
// malformed hashes, is reported as false.
func (v *ReceiptVerifier) Verify(ctx context.Context, txHash string, minAmount decimal.Decimal) bool {
	return v.VerifyDetailed(ctx, txHash, minAmount).IsValid
}

// VerifyDetailed is Verify with the reason for a negative outcome.
func (v *ReceiptVerifier) VerifyDetailed(ctx context.Context, txHash string, minAmount decimal.Decimal) *types.VerificationResult {
	hash, err := utils.NormalizeTxHash(txHash)
	if err != nil {
		v.logger.Debug("malformed transaction hash", map[string]any{"error": err})
		return &types.VerificationResult{InvalidReason: types.ReasonMalformedHash}
	}

	labels := map[string]string{"network": v.network.String()}

	if receipt, ok := v.verified.Get(hash); ok {
		v.metrics.IncCounter(metrics.VerifierCacheHit, labels)
		return v.compare(receipt, minAmount, true)
	}

	if reason, ok := v.recentFailure(hash); ok {
		v.metrics.IncCounter(metrics.VerifierNegHit, labels)
		return &types.VerificationResult{TxHash: hash, InvalidReason: reason, Cached: true}
	}

	v.metrics.IncCounter(metrics.VerifierCacheMiss, labels)

	ch := v.flights.DoChan(hash, func() (interface{}, error) {
		return v.fetch(ctx, hash), nil
	})

	var outcome lookupOutcome
	select {
	case <-ctx.Done():
		v.logger.Warn("verification abandoned", map[string]any{"tx_hash": hash, "error": ctx.Err()})
		return &types.VerificationResult{TxHash: hash, InvalidReason: types.ReasonChainError}
	case res := <-ch:
		outcome = res.Val.(lookupOutcome)
	}

	if outcome.receipt == nil {
		return &types.VerificationResult{TxHash: hash, InvalidReason: outcome.reason}
	}

	return v.compare(*outcome.receipt, minAmount, false)
}

// fetch performs the chain query for a cache miss. It runs detached from
// the caller's cancellation because its result is shared with every
// coalesced caller; the configured timeout still bounds it.
func (v *ReceiptVerifier) fetch(ctx context.Context, hash string) lookupOutcome {
	if receipt, ok := v.verified.Get(hash); ok {
		return lookupOutcome{receipt: &receipt}
	}

	queryCtx := context.WithoutCancel(ctx)
	if v.timeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(queryCtx, v.timeout)
		defer cancel()
	}

	labels := map[string]string{"network": v.network.String()}
	start := time.Now()
	receipt, err := v.chain.TransactionReceipt(queryCtx, common.HexToHash(hash))
	v.metrics.ObserveLatency(metrics.ChainLookup, time.Since(start), labels)

	if err != nil {
		if clients.IsNotFound(err) {
			v.logger.Debug("receipt not found", map[string]any{"tx_hash": hash})
			v.rememberFailure(hash, types.ReasonReceiptNotFound)
			return lookupOutcome{reason: types.ReasonReceiptNotFound}
		}

		v.metrics.IncCounter(metrics.ChainError, labels)
		v.logger.Warn("receipt query failed", map[string]any{"tx_hash": hash, "error": err})
		return lookupOutcome{reason: types.ReasonChainError}
	}

	if receipt == nil {
		v.rememberFailure(hash, types.ReasonReceiptNotFound)
		return lookupOutcome{reason: types.ReasonReceiptNotFound}
	}

	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		v.logger.Info("transaction reverted", map[string]any{"tx_hash": hash})
		v.rememberFailure(hash, types.ReasonReceiptReverted)
		return lookupOutcome{reason: types.ReasonReceiptReverted}
	}

	transfer, ok := clients.FindTransfer(receipt.Logs, v.token, v.recipient)
	if !ok {
		v.logger.Info("no qualifying transfer in receipt", map[string]any{
			"tx_hash": hash,
			"logs":    len(receipt.Logs),
		})
		v.rememberFailure(hash, types.ReasonNoQualifyingLog)
		return lookupOutcome{reason: types.ReasonNoQualifyingLog}
	}

	entry := types.VerifiedReceipt{
		TxHash:            hash,
		TransferredAmount: utils.FormatTokenAmount(transfer.Value, v.decimals),
		ObservedAt:        v.now(),
	}

	// Entries are immutable: keep whichever landed first.
	if found, _ := v.verified.ContainsOrAdd(hash, entry); found {
		if existing, ok := v.verified.Peek(hash); ok {
			entry = existing
		}
	}
	if v.negative != nil {
		v.negative.Remove(hash)
	}

	v.logger.Debug("payment receipt cached", map[string]any{
		"tx_hash": hash,
		"amount":  entry.TransferredAmount.String(),
		"from":    transfer.From.Hex(),
	})

	return lookupOutcome{receipt: &entry}
}

func (v *ReceiptVerifier) rememberFailure(hash, reason string) {
	if v.negative == nil {
		return
	}
	v.negative.Add(hash, failure{reason: reason, expires: v.now().Add(v.negativeTTL)})
}

// recentFailure returns the remembered reason for hash while it is still
// within the negative TTL. Expired entries are dropped on read.
func (v *ReceiptVerifier) recentFailure(hash string) (string, bool) {
	if v.negative == nil {
		return "", false
	}
	f, ok := v.negative.Get(hash)
	if !ok {
		return "", false
	}
	if !v.now().Before(f.expires) {
		v.negative.Remove(hash)
		return "", false
	}
	return f.reason, true
}

func (v *ReceiptVerifier) compare(receipt types.VerifiedReceipt, minAmount decimal.Decimal, cached bool) *types.VerificationResult {
	amount := receipt.TransferredAmount
	result := &types.VerificationResult{
		IsValid: receipt.Covers(minAmount),
		TxHash:  receipt.TxHash,
		Amount:  &amount,
		Cached:  cached,
	}
	if !result.IsValid {
		result.InvalidReason = types.ReasonInsufficientAmount
	}
	return result
}

// Lookup returns the cached receipt for txHash, if any.
func (v *ReceiptVerifier) Lookup(txHash string) (types.VerifiedReceipt, bool) {
	hash, err := utils.NormalizeTxHash(txHash)
	if err != nil {
		return types.VerifiedReceipt{}, false
	}
	return v.verified.Peek(hash)
}

// Len returns the number of cached receipts.
func (v *ReceiptVerifier) Len() int {
	return v.verified.Len()
}

// Close releases the chain client.
func (v *ReceiptVerifier) Close() {
	v.chain.Close()
}
