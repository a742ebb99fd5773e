// Package x402 is a pay-per-call marketplace core: callers pay for an
// operation with an on-chain stablecoin transfer and present the
// transaction hash as proof.
package x402

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/asterpay/x402/catalog"
	"github.com/asterpay/x402/clients"
	"github.com/asterpay/x402/gate"
	"github.com/asterpay/x402/ledger"
	"github.com/asterpay/x402/logger"
	"github.com/asterpay/x402/metrics"
	"github.com/asterpay/x402/types"
	"github.com/asterpay/x402/verification"
)

var validate = validator.New()

// Config describes what is sold and where payments must land.
type Config struct {
	Target types.PaymentTarget
	Prices map[types.Operation]string

	// CacheSize bounds the verified receipt cache. Zero uses the default.
	CacheSize int

	// NegativeTTL is how long failed lookups are remembered. Zero disables
	// negative caching.
	NegativeTTL time.Duration
}

// Marketplace wires the verifier, the gate, the ledger and the catalog
// together. It owns all of their state.
type Marketplace struct {
	verifier *verification.ReceiptVerifier
	ledger   *ledger.UsageLedger
	catalog  *catalog.Service
	gate     *gate.PaymentGate

	logger    logger.Logger
	metrics   metrics.Recorder
	timeout   time.Duration
	singleUse bool
}

// New creates a Marketplace that verifies payments through chain.
func New(cfg Config, chain clients.ChainClient, opts ...Option) (*Marketplace, error) {
	m := &Marketplace{
		logger:  logger.NoopLogger{},
		metrics: metrics.NoopRecorder{},
		timeout: verification.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := validate.Struct(cfg.Target); err != nil {
		return nil, &types.X402Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("invalid payment target %s: %v", cfg.Target.DisplayName(), err),
		}
	}

	prices, err := catalog.NewPriceTable(cfg.Prices)
	if err != nil {
		return nil, err
	}

	m.catalog, err = catalog.NewService(prices, cfg.Target)
	if err != nil {
		return nil, err
	}

	m.verifier, err = verification.NewReceiptVerifier(chain, verification.Config{
		Network:     cfg.Target.Network,
		Token:       common.HexToAddress(cfg.Target.Token.Address),
		Recipient:   common.HexToAddress(cfg.Target.Recipient),
		Decimals:    cfg.Target.Token.Decimals,
		CacheSize:   cfg.CacheSize,
		NegativeTTL: cfg.NegativeTTL,
		Timeout:     m.timeout,
	},
		verification.WithLogger(m.logger.With(map[string]any{"component": "verifier"})),
		verification.WithMetrics(m.metrics),
	)
	if err != nil {
		return nil, err
	}

	m.ledger = ledger.New()
	m.gate, err = gate.New(m.verifier, m.ledger, m.catalog,
		gate.WithLogger(m.logger.With(map[string]any{"component": "gate"})),
		gate.WithMetrics(m.metrics),
		gate.WithSingleUse(m.singleUse),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Guard decides a call to op. See gate.PaymentGate.Guard.
func (m *Marketplace) Guard(ctx context.Context, op types.Operation, proof, resource string) (types.Decision, error) {
	return m.gate.Guard(ctx, op, proof, resource)
}

// Verify reports whether txHash paid at least amount to the configured
// recipient.
func (m *Marketplace) Verify(ctx context.Context, txHash string, amount decimal.Decimal) bool {
	return m.verifier.Verify(ctx, txHash, amount)
}

// Stats returns a snapshot of the usage ledger.
func (m *Marketplace) Stats() ledger.Snapshot {
	return m.ledger.Snapshot()
}

// Prices returns the price table as clients see it.
func (m *Marketplace) Prices() map[string]string {
	return m.catalog.Prices().Strings()
}

func (m *Marketplace) Pricing() catalog.Pricing {
	return m.catalog.Pricing()
}

func (m *Marketplace) Catalog() *catalog.Service {
	return m.catalog
}

// Close releases the chain client.
func (m *Marketplace) Close() {
	m.verifier.Close()
}

// Version information
const (
	Version         = "1.0.0"
	ProtocolVersion = types.X402Version
)

// GetVersion returns version information
func GetVersion() map[string]interface{} {
	return map[string]interface{}{
		"library_version":     Version,
		"protocol_version":    ProtocolVersion,
		"supported_networks":  []string{types.NetworkBase.String(), types.NetworkBaseSepolia.String()},
		"supported_schemes":   []string{string(types.SchemeExact)},
		"supported_standards": []string{"erc20"},
	}
}
