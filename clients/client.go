package clients

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// ChainClient is the subset of an EVM JSON-RPC client the verifier needs.
// Implementations return ErrReceiptNotFound when the chain has no receipt
// for the hash yet.
type ChainClient interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
	Close()
}
