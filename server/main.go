package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	nhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-currency-converter/config"
	"go-currency-converter/exchange"
	"go-currency-converter/exchangerate"
	"go-currency-converter/http"
)

func main() {
	configPath := flag.String("c", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	allowed, _ := cfg.Level()

	w := log.NewSyncWriter(os.Stderr)
	logger := log.NewLogfmtLogger(w)
	logger = level.NewFilter(logger, allowed)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var rateSource exchange.RateSource = exchangerate.New(
		exchangerate.WithBaseURL(cfg.Rates.BaseURL),
		exchangerate.WithHTTPClient(&nhttp.Client{Timeout: cfg.Rates.Timeout}),
		exchangerate.WithLogger(log.With(logger, "component", "exchangerate_rest")),
	)
	rateSource = exchangerate.NewLoggingService(log.With(logger, "component", "exchangerate"), rateSource)

	convertService, err := exchange.NewService(rateSource)
	if err != nil {
		level.Error(logger).Log("msg", "failed to build converter", "err", err)
		os.Exit(1)
	}
	convertService = exchange.NewInstrumentingService(exchange.NewMetrics(registry), convertService)
	convertService = exchange.NewLoggingService(log.With(logger, "component", "convert"), convertService)

	mux := nhttp.NewServeMux()
	mux.Handle("/api/", http.NewServer(convertService, log.With(logger, "component", "http")))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &nhttp.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		level.Info(logger).Log("msg", "listening", "addr", cfg.Server.ListenAddr, "rates_url", cfg.Rates.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nhttp.ErrServerClosed) {
			level.Error(logger).Log("msg", "server failed", "err", err)
			os.Exit(1)
		}
	}()

	<-done
	level.Info(logger).Log("msg", "shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		level.Error(logger).Log("msg", "shutdown failed", "err", err)
	}
}
