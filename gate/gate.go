// Package gate turns an inbound call for a priced operation into a
// challenge, a rejection or an admitted, metered call.
package gate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/asterpay/x402/catalog"
	"github.com/asterpay/x402/ledger"
	"github.com/asterpay/x402/logger"
	"github.com/asterpay/x402/metrics"
	"github.com/asterpay/x402/types"
	"github.com/asterpay/x402/utils"
	"github.com/asterpay/x402/verification"
)

const (
	// ProofHeader carries the transaction hash of the payment.
	ProofHeader = "X-Payment-Tx"

	challengeError = "Payment Required"
	rejectionError = "Invalid or insufficient payment"
)

type Option func(*PaymentGate)

func WithLogger(l logger.Logger) Option {
	return func(g *PaymentGate) {
		g.logger = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(g *PaymentGate) {
		g.metrics = r
	}
}

// WithSingleUse makes every transaction hash admit at most one call per
// operation. Off by default: a verified hash is accepted for every call
// that presents it.
func WithSingleUse(enabled bool) Option {
	return func(g *PaymentGate) {
		g.singleUse = enabled
	}
}

// PaymentGate is the sole writer of the usage ledger and the sole caller
// of the receipt verifier. It keeps no per-call state between calls.
type PaymentGate struct {
	verifier verification.Verifier
	ledger   *ledger.UsageLedger
	catalog  *catalog.Service

	singleUse  bool
	consumedMu sync.Mutex
	consumed   map[types.Operation]map[string]struct{}

	logger  logger.Logger
	metrics metrics.Recorder
}

func New(verifier verification.Verifier, usage *ledger.UsageLedger, cat *catalog.Service, opts ...Option) (*PaymentGate, error) {
	if verifier == nil || usage == nil || cat == nil {
		return nil, &types.X402Error{
			Code:    types.ErrConfigError,
			Message: "payment gate requires a verifier, a ledger and a catalog",
		}
	}

	g := &PaymentGate{
		verifier: verifier,
		ledger:   usage,
		catalog:  cat,
		consumed: make(map[types.Operation]map[string]struct{}),
		logger:   logger.NoopLogger{},
		metrics:  metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Guard decides a single call. proof is the raw X-Payment-Tx header value
// ("" when absent) and resource identifies what is being purchased,
// usually the request path. The only error is an unknown operation.
func (g *PaymentGate) Guard(ctx context.Context, op types.Operation, proof, resource string) (types.Decision, error) {
	prices := g.catalog.Prices()
	price, ok := prices.Price(op)
	if !ok {
		return types.Decision{}, &types.X402Error{
			Code:    types.ErrUnknownOperation,
			Message: fmt.Sprintf("operation %q is not priced", op),
		}
	}

	if resource == "" {
		if ep, found := g.catalog.Endpoint(op); found {
			resource = ep.Path
		}
	}

	// Attempts are counted before deciding, challenges included.
	g.ledger.RecordAttempt()

	labels := map[string]string{
		"operation": op.String(),
		"network":   g.catalog.Target().Network.String(),
	}

	proof = strings.TrimSpace(proof)
	if proof == "" {
		g.metrics.IncCounter(metrics.GateChallenge, labels)
		g.logger.Debug("payment required", map[string]any{"operation": op, "resource": resource})
		return types.Decision{
			Kind:      types.DecisionChallenge,
			Challenge: g.challenge(prices.Display(op), resource),
		}, nil
	}

	result := g.verifier.VerifyDetailed(ctx, proof, price)
	if result.IsValid && g.singleUse && !g.consume(op, result.TxHash) {
		result.IsValid = false
		result.InvalidReason = types.ReasonAlreadyConsumed
	}

	if !result.IsValid {
		g.metrics.IncCounter(metrics.GateReject, labels)
		g.logger.Info("payment rejected", map[string]any{
			"operation": op,
			"tx_hash":   proof,
			"reason":    result.InvalidReason,
		})
		return types.Decision{
			Kind: types.DecisionReject,
			Rejection: &types.PaymentRejection{
				Error:    rejectionError,
				Required: prices.Display(op),
				TxHash:   proof,
				Reason:   result.InvalidReason,
			},
		}, nil
	}

	fingerprint := utils.Fingerprint(proof)
	g.ledger.RecordPaid(utils.ToMinorUnits(price), fingerprint)
	g.metrics.IncCounter(metrics.GateAdmit, labels)
	g.logger.Info("payment accepted", map[string]any{
		"operation":   op,
		"fingerprint": fingerprint,
		"cached":      result.Cached,
	})

	return types.Decision{
		Kind:        types.DecisionAdmit,
		Price:       price,
		Amount:      prices.Display(op),
		TxHash:      result.TxHash,
		Fingerprint: fingerprint,
	}, nil
}

func (g *PaymentGate) challenge(amount, resource string) *types.PaymentChallenge {
	target := g.catalog.Target()

	return &types.PaymentChallenge{
		Error: challengeError,
		Payment: types.PaymentDetails{
			Address:  target.Recipient,
			Amount:   amount,
			Currency: target.Token.Symbol,
			Network:  target.Network,
			ChainID:  target.ChainID,
		},
		X402: types.X402Envelope{
			Version: types.X402Version,
			Accepts: []types.PaymentRequirements{
				{
					Scheme:            types.SchemeExact,
					Network:           target.Network,
					MaxAmountRequired: amount,
					Resource:          resource,
					Description:       "API call: " + resource,
					PayTo:             target.Recipient,
					Asset:             target.Token.Address,
					MimeType:          "application/json",
				},
			},
		},
	}
}

// consume marks hash as spent for op and reports whether it was unspent.
func (g *PaymentGate) consume(op types.Operation, hash string) bool {
	g.consumedMu.Lock()
	defer g.consumedMu.Unlock()

	spent, ok := g.consumed[op]
	if !ok {
		spent = make(map[string]struct{})
		g.consumed[op] = spent
	}
	if _, used := spent[hash]; used {
		return false
	}
	spent[hash] = struct{}{}
	return true
}
