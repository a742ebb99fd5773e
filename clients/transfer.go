package clients

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

const erc20TransferABI = `
[
  {
    "name": "Transfer",
    "type": "event",
    "anonymous": false,
    "inputs": [
      { "name": "from", "type": "address", "indexed": true },
      { "name": "to", "type": "address", "indexed": true },
      { "name": "value", "type": "uint256", "indexed": false }
    ]
  }
]
`

var tokenABI = mustParseABI(erc20TransferABI)

// TransferEventID is keccak256("Transfer(address,address,uint256)").
var TransferEventID = tokenABI.Events["Transfer"].ID

// Transfer is a decoded ERC-20 Transfer log entry.
type Transfer struct {
	Token common.Address
	From  common.Address
	To    common.Address
	Value *big.Int
	Index uint
}

// DecodeTransfer decodes an ERC-20 Transfer log. It fails for any other
// event or for malformed topics/data.
func DecodeTransfer(log *ethtypes.Log) (*Transfer, error) {
	if log == nil {
		return nil, fmt.Errorf("nil log")
	}
	if len(log.Topics) != 3 || log.Topics[0] != TransferEventID {
		return nil, fmt.Errorf("log %d is not an ERC-20 Transfer", log.Index)
	}

	values, err := tokenABI.Unpack("Transfer", log.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack Transfer value: %w", err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unexpected Transfer data arity %d", len(values))
	}
	value, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected Transfer value type %T", values[0])
	}

	return &Transfer{
		Token: log.Address,
		From:  common.BytesToAddress(log.Topics[1].Bytes()),
		To:    common.BytesToAddress(log.Topics[2].Bytes()),
		Value: value,
		Index: log.Index,
	}, nil
}

// FindTransfer returns the first Transfer of token to recipient in logs.
// Later qualifying transfers are ignored, not summed.
func FindTransfer(logs []*ethtypes.Log, token, recipient common.Address) (*Transfer, bool) {
	for _, log := range logs {
		if log == nil || log.Address != token {
			continue
		}
		transfer, err := DecodeTransfer(log)
		if err != nil {
			continue
		}
		if transfer.To == recipient {
			return transfer, true
		}
	}
	return nil, false
}

// TransferLog builds the log a token contract emits for a transfer.
// Useful for tests and fixtures.
func TransferLog(token, from, to common.Address, value *big.Int) *ethtypes.Log {
	data, _ := tokenABI.Events["Transfer"].Inputs.NonIndexed().Pack(value)
	return &ethtypes.Log{
		Address: token,
		Topics: []common.Hash{
			TransferEventID,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data: data,
	}
}

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("invalid ABI: %v", err))
	}
	return parsed
}
