package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// X402Version represents the version of the x402 protocol envelope
// advertised in payment challenges.
const X402Version = "1.0"

// Network represents the blockchain network payments are accepted on
type Network string

const (
	NetworkBase        Network = "base"
	NetworkBaseSepolia Network = "base-sepolia" // testnet
)

// PaymentScheme represents the x402 payment scheme offered to clients
type PaymentScheme string

const (
	SchemeExact PaymentScheme = "exact"
)

// Currency is the symbol of the fungible token prices are quoted in
type Currency string

const (
	CurrencyUSDC Currency = "USDC"
)

// Operation identifies a priced endpoint
type Operation string

const (
	OperationSummarize Operation = "summarize"
	OperationTranslate Operation = "translate"
	OperationAnalyze   Operation = "analyze"
	OperationSearch    Operation = "search"
)

func (o Operation) String() string {
	return string(o)
}

// TokenInfo contains information about the payment token
type TokenInfo struct {
	Address  string   `json:"address" validate:"required,eth_addr"`
	Symbol   Currency `json:"symbol" validate:"required"`
	Decimals int32    `json:"decimals" validate:"gte=0,lte=36"`
}

// PaymentRequirements is a single entry of the x402 "accepts" list.
type PaymentRequirements struct {
	// Scheme of the payment protocol to use (e.g., "exact").
	Scheme PaymentScheme `json:"scheme"`

	// Network of the blockchain to send payment on (e.g., "base").
	Network Network `json:"network"`

	// Amount required to pay for the resource, in token units (e.g., "0.02").
	MaxAmountRequired string `json:"maxAmountRequired"`

	// Resource identifier being purchased.
	Resource string `json:"resource"`

	// Description of the resource being purchased.
	Description string `json:"description"`

	// Address to which the payment must be sent.
	PayTo string `json:"payTo,omitempty"`

	// Address of the ERC20 token contract.
	Asset string `json:"asset,omitempty"`

	// MIME type of the resource response.
	MimeType string `json:"mimeType,omitempty"`
}

// PaymentDetails is the human oriented half of a payment challenge.
type PaymentDetails struct {
	Address  string   `json:"address"`
	Amount   string   `json:"amount"`
	Currency Currency `json:"currency"`
	Network  Network  `json:"network"`
	ChainID  int64    `json:"chainId"`
}

// X402Envelope lists the payment schemes a resource accepts.
type X402Envelope struct {
	Version string                `json:"version"`
	Accepts []PaymentRequirements `json:"accepts"`
}

// PaymentChallenge is returned with status 402 when no proof was supplied.
type PaymentChallenge struct {
	Error   string         `json:"error"`
	Payment PaymentDetails `json:"payment"`
	X402    X402Envelope   `json:"x402"`
}

// PaymentRejection is returned with status 402 when the supplied proof
// could not be verified.
type PaymentRejection struct {
	Error    string `json:"error"`
	Required string `json:"required"`
	TxHash   string `json:"txHash"`
	Reason   string `json:"reason,omitempty"`
}

// VerifiedReceipt is a cached, immutable record of a qualifying transfer.
type VerifiedReceipt struct {
	TxHash            string          `json:"txHash"`
	TransferredAmount decimal.Decimal `json:"transferredAmount"`
	ObservedAt        time.Time       `json:"observedAt"`
}

// Covers reports whether the receipt paid at least amount.
func (r VerifiedReceipt) Covers(amount decimal.Decimal) bool {
	return r.TransferredAmount.GreaterThanOrEqual(amount)
}

// VerificationResult contains the result of payment verification
type VerificationResult struct {
	IsValid       bool             `json:"isValid"`
	InvalidReason string           `json:"invalidReason,omitempty"`
	TxHash        string           `json:"txHash,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Cached        bool             `json:"cached"`
}

// Invalid reasons reported by the verifier.
const (
	ReasonMalformedHash      = "malformed_tx_hash"
	ReasonReceiptNotFound    = "receipt_not_found"
	ReasonReceiptReverted    = "receipt_reverted"
	ReasonNoQualifyingLog    = "no_qualifying_transfer"
	ReasonInsufficientAmount = "insufficient_amount"
	ReasonChainError         = "chain_error"
	ReasonAlreadyConsumed    = "payment_already_consumed"
)

// DecisionKind enumerates the terminal states of the payment gate.
type DecisionKind int

const (
	DecisionChallenge DecisionKind = iota
	DecisionReject
	DecisionAdmit
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionChallenge:
		return "challenge"
	case DecisionReject:
		return "reject"
	case DecisionAdmit:
		return "admit"
	default:
		return fmt.Sprintf("decision(%d)", int(k))
	}
}

// Decision is the outcome of guarding a single call.
type Decision struct {
	Kind DecisionKind

	// Set when Kind is DecisionChallenge.
	Challenge *PaymentChallenge

	// Set when Kind is DecisionReject.
	Rejection *PaymentRejection

	// Set when Kind is DecisionAdmit. Amount is Price as configured.
	Price       decimal.Decimal
	Amount      string
	TxHash      string
	Fingerprint string
}

// Admitted reports whether the downstream operation may run.
func (d Decision) Admitted() bool {
	return d.Kind == DecisionAdmit
}
