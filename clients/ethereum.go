package clients

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/asterpay/x402/types"
)

var _ ChainClient = (*EVMClient)(nil)

// EVMClient reads transaction receipts from an EVM JSON-RPC endpoint
type EVMClient struct {
	rpcURL  string
	network types.Network
	client  *ethclient.Client
}

// NewEVMClient dials rpcURL. The connection is lazy for HTTP endpoints, so
// an unreachable node surfaces on the first query rather than here.
func NewEVMClient(network types.Network, rpcURL string) (*EVMClient, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum RPC: %w", err)
	}

	return &EVMClient{
		network: network,
		rpcURL:  rpcURL,
		client:  client,
	}, nil
}

// TransactionReceipt implements ChainClient.
func (e *EVMClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	receipt, err := e.client.TransactionReceipt(ctx, txHash)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%s: %w", txHash.Hex(), ErrReceiptNotFound)
		}
		return nil, fmt.Errorf("eth_getTransactionReceipt %s: %w", txHash.Hex(), err)
	}
	return receipt, nil
}

// ChainID queries the node's chain id.
func (e *EVMClient) ChainID(ctx context.Context) (*big.Int, error) {
	return e.client.ChainID(ctx)
}

// CheckChainID fails when the node serves a different chain than expected.
func (e *EVMClient) CheckChainID(ctx context.Context, expected int64) error {
	id, err := e.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to query chain id: %w", err)
	}
	if id.Cmp(big.NewInt(expected)) != 0 {
		return &types.X402Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("rpc %s serves chain %s, expected %d", e.rpcURL, id, expected),
		}
	}
	return nil
}

// GetNetwork returns the network this client was configured for.
func (e *EVMClient) GetNetwork() types.Network {
	return e.network
}

// Close implements ChainClient.
func (e *EVMClient) Close() {
	e.client.Close()
}
