package types

import "fmt"

// ChainIDs of the supported networks.
var ChainIDs = map[Network]int64{
	NetworkBase:        8453,
	NetworkBaseSepolia: 84532,
}

// USDCAddresses are the canonical USDC deployments per network.
var USDCAddresses = map[Network]string{
	NetworkBase:        "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
	NetworkBaseSepolia: "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
}

// USDCDecimals is the fixed precision of USDC.
const USDCDecimals int32 = 6

// PaymentTarget describes where and in what token a payment must land.
type PaymentTarget struct {
	Network   Network   `json:"network" validate:"required"`
	ChainID   int64     `json:"chainId" validate:"gt=0"`
	Recipient string    `json:"recipient" validate:"required,eth_addr"`
	Token     TokenInfo `json:"token"`
}

// DisplayName is the human readable network label used by the catalog.
func (t PaymentTarget) DisplayName() string {
	name := string(t.Network)
	switch t.Network {
	case NetworkBase:
		name = "Base"
	case NetworkBaseSepolia:
		name = "Base Sepolia"
	}
	return fmt.Sprintf("%s (Chain ID: %d)", name, t.ChainID)
}

func (n Network) String() string {
	return string(n)
}
