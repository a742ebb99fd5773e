package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asterpay/x402/types"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3002, cfg.Server.Port)
	assert.Equal(t, ":3002", cfg.Addr())
	assert.Equal(t, "claude-3-haiku-20240307", cfg.Upstream.Model)
	assert.Equal(t, "0x0000000000000000000000000000000000000000", cfg.Payment.Address)
	assert.Equal(t, int64(8453), cfg.Payment.ChainID)
	assert.Equal(t, 10000, cfg.Verification.CacheSize)
	assert.Equal(t, 30*time.Second, cfg.NegativeTTL())
	assert.Equal(t, 10*time.Second, cfg.ChainTimeout())
	assert.False(t, cfg.Verification.SingleUse)
	assert.True(t, cfg.Observability.EnableMetrics)
	assert.Equal(t, "info", cfg.Observability.LogLevel)

	assert.Equal(t, map[types.Operation]string{
		types.OperationSummarize: "0.02",
		types.OperationTranslate: "0.03",
		types.OperationAnalyze:   "0.05",
		types.OperationSearch:    "0.02",
	}, cfg.PriceTable())

	target := cfg.Target()
	assert.Equal(t, types.NetworkBase, target.Network)
	assert.Equal(t, types.USDCAddresses[types.NetworkBase], target.Token.Address)
	assert.Equal(t, types.USDCDecimals, target.Token.Decimals)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("PAYMENT_ADDRESS", "0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	t.Setenv("PRICE_ANALYZE", "0.10")
	t.Setenv("NEGATIVE_CACHE_TTL_SECONDS", "0")
	t.Setenv("SINGLE_USE_PAYMENTS", "true")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", cfg.Target().Recipient)
	assert.Equal(t, "0.10", cfg.PriceTable()[types.OperationAnalyze])
	assert.Equal(t, time.Duration(0), cfg.NegativeTTL())
	assert.True(t, cfg.Verification.SingleUse)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
}

func TestLoad_MalformedValuesAreRejected(t *testing.T) {
	t.Setenv("SINGLE_USE_PAYMENTS", "yes")
	t.Setenv("CHAIN_ID", "84532x")
	t.Setenv("PORT", "eighty")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Equal(t, types.ErrConfigError, types.ErrorCode(err))
	for _, key := range []string{"SINGLE_USE_PAYMENTS", "CHAIN_ID", "PORT"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestLoad_MalformedValue(t *testing.T) {
	cases := map[string][2]string{
		"cache size":     {"VERIFIED_CACHE_SIZE", "lots"},
		"enable metrics": {"ENABLE_METRICS", "maybe"},
		"negative ttl":   {"NEGATIVE_CACHE_TTL_SECONDS", "30s"},
		"chain timeout":  {"CHAIN_TIMEOUT_SECONDS", ""},
		"decimals":       {"TOKEN_DECIMALS", "six"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, types.ErrConfigError, types.ErrorCode(err))
			assert.Contains(t, err.Error(), kv[0])
		})
	}
}

func TestLoad_SurroundingWhitespaceIsAccepted(t *testing.T) {
	t.Setenv("PORT", " 8080 ")
	t.Setenv("SINGLE_USE_PAYMENTS", "true\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Verification.SingleUse)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string][2]string{
		"bad address":   {"PAYMENT_ADDRESS", "not-an-address"},
		"bad token":     {"TOKEN_ADDRESS", "0x1234"},
		"zero cache":    {"VERIFIED_CACHE_SIZE", "0"},
		"negative ttl":  {"NEGATIVE_CACHE_TTL_SECONDS", "-1"},
		"bad log level": {"LOG_LEVEL", "chatty"},
		"bad rpc url":   {"RPC_URL", "mainnet"},
		"zero decimals": {"TOKEN_DECIMALS", "0"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, types.ErrConfigError, types.ErrorCode(err))
		})
	}
}
