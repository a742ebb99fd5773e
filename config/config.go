// Package config reads the marketplace settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"

	"github.com/asterpay/x402/types"
)

type Config struct {
	Server
	Upstream
	Payment
	Prices
	Verification
	Observability
}

type Server struct {
	Port int `validate:"min=1,max=65535"`
}

type Upstream struct {
	APIKey string
	Model  string `validate:"required"`
}

type Payment struct {
	Address       string `validate:"required,eth_addr"`
	TokenAddress  string `validate:"required,eth_addr"`
	TokenDecimals int    `validate:"min=1,max=36"`
	Network       string `validate:"required"`
	ChainID       int64  `validate:"gt=0"`
	RPCURL        string `validate:"required,url"`
}

type Prices struct {
	Summarize string `validate:"required"`
	Translate string `validate:"required"`
	Analyze   string `validate:"required"`
	Search    string `validate:"required"`
}

type Verification struct {
	CacheSize          int `validate:"gt=0"`
	NegativeTTLSeconds int `validate:"min=0"`
	ChainTimeoutSecs   int `validate:"gt=0"`
	SingleUse          bool
}

type Observability struct {
	LogLevel      string `validate:"oneof=debug info warn error"`
	EnableMetrics bool
}

var validate = validator.New()

// Load reads the configuration from the environment and validates it.
// Unset variables take their defaults; a variable that is set but cannot
// be parsed is an error.
func Load() (*Config, error) {
	env := &envReader{}
	cfg := &Config{
		Server: Server{
			Port: env.getEnvInt("PORT", 3002),
		},
		Upstream: Upstream{
			APIKey: getEnvString("ANTHROPIC_API_KEY", ""),
			Model:  getEnvString("ANTHROPIC_MODEL", "claude-3-haiku-20240307"),
		},
		Payment: Payment{
			Address:       getEnvString("PAYMENT_ADDRESS", common.Address{}.Hex()),
			TokenAddress:  getEnvString("TOKEN_ADDRESS", types.USDCAddresses[types.NetworkBase]),
			TokenDecimals: env.getEnvInt("TOKEN_DECIMALS", int(types.USDCDecimals)),
			Network:       getEnvString("NETWORK", types.NetworkBase.String()),
			ChainID:       env.getEnvInt64("CHAIN_ID", 8453),
			RPCURL:        getEnvString("RPC_URL", "https://mainnet.base.org"),
		},
		Prices: Prices{
			Summarize: getEnvString("PRICE_SUMMARIZE", "0.02"),
			Translate: getEnvString("PRICE_TRANSLATE", "0.03"),
			Analyze:   getEnvString("PRICE_ANALYZE", "0.05"),
			Search:    getEnvString("PRICE_SEARCH", "0.02"),
		},
		Verification: Verification{
			CacheSize:          env.getEnvInt("VERIFIED_CACHE_SIZE", 10000),
			NegativeTTLSeconds: env.getEnvInt("NEGATIVE_CACHE_TTL_SECONDS", 30),
			ChainTimeoutSecs:   env.getEnvInt("CHAIN_TIMEOUT_SECONDS", 10),
			SingleUse:          env.getEnvBool("SINGLE_USE_PAYMENTS", false),
		},
		Observability: Observability{
			LogLevel:      strings.ToLower(getEnvString("LOG_LEVEL", "info")),
			EnableMetrics: env.getEnvBool("ENABLE_METRICS", true),
		},
	}

	if err := errors.Join(env.errs...); err != nil {
		return nil, &types.X402Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("invalid configuration: %v", err),
		}
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, &types.X402Error{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("invalid configuration: %v", err),
		}
	}
	return cfg, nil
}

// PriceTable returns the configured prices keyed by operation.
func (c *Config) PriceTable() map[types.Operation]string {
	return map[types.Operation]string{
		types.OperationSummarize: c.Prices.Summarize,
		types.OperationTranslate: c.Prices.Translate,
		types.OperationAnalyze:   c.Prices.Analyze,
		types.OperationSearch:    c.Prices.Search,
	}
}

// Target describes where payments must be sent.
func (c *Config) Target() types.PaymentTarget {
	return types.PaymentTarget{
		Network:   types.Network(c.Payment.Network),
		ChainID:   c.Payment.ChainID,
		Recipient: common.HexToAddress(c.Payment.Address).Hex(),
		Token: types.TokenInfo{
			Address:  common.HexToAddress(c.Payment.TokenAddress).Hex(),
			Symbol:   types.CurrencyUSDC,
			Decimals: int32(c.Payment.TokenDecimals),
		},
	}
}

func (c *Config) NegativeTTL() time.Duration {
	return time.Duration(c.Verification.NegativeTTLSeconds) * time.Second
}

func (c *Config) ChainTimeout() time.Duration {
	return time.Duration(c.Verification.ChainTimeoutSecs) * time.Second
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func getEnvString(key string, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}

	return value
}

// envReader collects parse failures so Load can report every malformed
// variable at once.
type envReader struct {
	errs []error
}

func (r *envReader) getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	intValue, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not an integer", key, value))
		return defaultValue
	}

	return intValue
}

func (r *envReader) getEnvInt64(key string, defaultValue int64) int64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not an integer", key, value))
		return defaultValue
	}

	return intValue
}

func (r *envReader) getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not a boolean", key, value))
		return defaultValue
	}

	return boolValue
}
