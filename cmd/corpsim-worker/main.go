package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"corpsim/internal/balance"
	"corpsim/internal/config"
	"corpsim/internal/corp"
	"corpsim/internal/db"
	"corpsim/internal/market"
	"corpsim/internal/turn"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWorkerFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	bal, err := balance.Load(cfg.BalancePath)
	if err != nil {
		logger.Error("load balance", "err", err)
		os.Exit(1)
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := corp.NewStore(pool, logger)
	prices := market.NewLoader(pool)

	seasonID, err := store.ActiveSeasonID(ctx)
	if err != nil {
		logger.Error("active season init failed", "err", err)
		os.Exit(1)
	}
	if err := store.SeedDefaults(ctx, seasonID); err != nil {
		logger.Error("seed defaults failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	metrics := turn.NewMetrics(reg)
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	processor := turn.NewProcessor(prices, store, bal, logger, metrics)
	processor.PeriodHours = cfg.PeriodHours
	processor.Workers = cfg.Workers

	if cfg.RunOnce {
		if err := processor.Run(ctx, seasonID); err != nil {
			logger.Error("turn failed", "err", err)
			os.Exit(1)
		}
		logger.Info("worker run-once completed")
		return
	}

	ticker := time.NewTicker(cfg.TurnEvery)
	defer ticker.Stop()

	logger.Info("worker started", "turn_every", cfg.TurnEvery.String(), "period_hours", cfg.PeriodHours)
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutdown")
			return
		case <-ticker.C:
			seasonID, err := store.ActiveSeasonID(ctx)
			if err != nil {
				logger.Error("season read failed", "err", err)
				continue
			}
			if err := processor.Run(ctx, seasonID); err != nil {
				logger.Error("turn failed", "err", err)
				continue
			}
		}
	}
}
