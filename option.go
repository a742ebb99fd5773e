package x402

import (
	"time"

	"github.com/asterpay/x402/logger"
	"github.com/asterpay/x402/metrics"
)

type Option func(*Marketplace)

func WithLogger(l logger.Logger) Option {
	return func(m *Marketplace) {
		m.logger = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(m *Marketplace) {
		m.metrics = r
	}
}

// WithTimeout bounds each chain receipt query.
func WithTimeout(t time.Duration) Option {
	return func(m *Marketplace) {
		m.timeout = t
	}
}

// WithSingleUse admits each transaction hash at most once per operation.
func WithSingleUse(enabled bool) Option {
	return func(m *Marketplace) {
		m.singleUse = enabled
	}
}
