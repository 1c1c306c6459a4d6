package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/totemtrack/go-track-sheets/api"
	"github.com/totemtrack/go-track-sheets/config"
	"github.com/totemtrack/go-track-sheets/sheet"
	"github.com/totemtrack/go-track-sheets/store"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid environment", slog.Any("error", err))
		os.Exit(1)
	}

	ordersURL := flag.String("sheet-url", cfg.OrdersSheetURL, "CSV export URL of the order-tracking sheet")
	documentURL := flag.String("doc-sheet-url", cfg.DocumentSheetURL, "Share URL of the partner-channel sheet")
	documentGID := flag.String("doc-sheet-gid", cfg.DocumentSheetGID, "Tab gid of the partner-channel sheet")
	listenAddr := flag.String("listen", cfg.ListenAddr, "HTTP API listen address")
	metricsAddr := flag.String("metrics-addr", cfg.MetricsAddr, "Prometheus metrics listen address (empty to disable)")
	refreshInterval := flag.Duration("refresh-interval", cfg.RefreshInterval, "Interval between sheet refreshes")
	verbose := flag.Bool("v", cfg.Verbose, "Enable verbose logging")
	flag.Parse()

	cfg.OrdersSheetURL = *ordersURL
	cfg.DocumentSheetURL = *documentURL
	cfg.DocumentSheetGID = *documentGID
	cfg.ListenAddr = *listenAddr
	cfg.MetricsAddr = *metricsAddr
	cfg.RefreshInterval = *refreshInterval
	cfg.Verbose = *verbose

	logger, level := newLogger(cfg.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	fetcher, err := sheet.NewFetcher(cfg)
	if err != nil {
		slog.Error("initialising fetcher", slog.Any("error", err))
		os.Exit(1)
	}

	st := store.NewStore(fetcher.Metrics)
	refresher := store.NewRefresher(st, fetcher, cfg, configuredDatasets(cfg)...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go refresher.Run(ctx)

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(fetcher.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	apiServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.Router(api.NewHandlers(st)),
	}
	go func() {
		slog.Info("tracking API listening",
			slog.String("addr", cfg.ListenAddr),
			slog.Duration("refresh_interval", cfg.RefreshInterval),
		)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received, draining in-flight requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("api server shutdown failed", slog.Any("error", err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
	}
}

func configuredDatasets(cfg *config.Config) []sheet.Dataset {
	var datasets []sheet.Dataset
	if cfg.OrdersSheetURL != "" {
		datasets = append(datasets, sheet.DatasetOrders)
	}
	if cfg.DocumentSheetURL != "" {
		datasets = append(datasets, sheet.DatasetDocuments)
	}
	return datasets
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
