package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	x402 "github.com/asterpay/x402"
	"github.com/asterpay/x402/clients"
	"github.com/asterpay/x402/config"
	"github.com/asterpay/x402/logger"
	"github.com/asterpay/x402/metrics"
	"github.com/asterpay/x402/server"
	"github.com/asterpay/x402/textservice"
	"github.com/asterpay/x402/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "marketplace: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	zl, err := logger.NewZapLogger(cfg.Observability.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()
	log := zl.With(map[string]any{"service": server.ServiceName})

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var metricsHandler http.Handler
	if cfg.Observability.EnableMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		prom, err := metrics.NewPrometheusRecorder(reg)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		recorder = prom
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chain, err := clients.NewEVMClient(types.Network(cfg.Payment.Network), cfg.Payment.RPCURL)
	if err != nil {
		return err
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = chain.CheckChainID(checkCtx, cfg.Payment.ChainID)
	cancel()
	if err != nil {
		if types.ErrorCode(err) == types.ErrConfigError {
			chain.Close()
			return err
		}
		log.Warn("could not confirm chain id", map[string]any{"rpc_url": cfg.Payment.RPCURL, "error": err})
	}

	market, err := x402.New(x402.Config{
		Target:      cfg.Target(),
		Prices:      cfg.PriceTable(),
		CacheSize:   cfg.Verification.CacheSize,
		NegativeTTL: cfg.NegativeTTL(),
	}, chain,
		x402.WithLogger(log),
		x402.WithMetrics(recorder),
		x402.WithTimeout(cfg.ChainTimeout()),
		x402.WithSingleUse(cfg.Verification.SingleUse),
	)
	if err != nil {
		chain.Close()
		return err
	}
	defer market.Close()

	text := textservice.NewAnthropicService(cfg.Upstream.APIKey, cfg.Upstream.Model,
		textservice.WithLogger(log.With(map[string]any{"component": "textservice"})),
		textservice.WithMetrics(recorder),
	)
	if !text.Available() {
		log.Warn("ANTHROPIC_API_KEY not set, paid operations will return 503", nil)
	}

	opts := []server.Option{server.WithLogger(log)}
	if metricsHandler != nil {
		opts = append(opts, server.WithMetricsHandler(metricsHandler))
	}
	srv := server.New(market, text, opts...)

	log.Info("marketplace listening", map[string]any{
		"port":            cfg.Server.Port,
		"payment_address": cfg.Target().Recipient,
		"network":         cfg.Target().DisplayName(),
		"prices":          market.Prices(),
		"single_use":      cfg.Verification.SingleUse,
	})

	return srv.Run(ctx, cfg.Addr())
}
