package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"railfactory/internal/config"
	"railfactory/internal/db"
	"railfactory/internal/game"
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
	pool, err := db.Connect(ctx, cfg.DatabaseURL, 5)
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Error("migrate failed", "err", err)
			os.Exit(1)
		}
	}

	svc := game.NewService(pool, logger)

	runOnce := strings.EqualFold(strings.TrimSpace(os.Getenv("RAILFACTORY_WORKER_RUN_ONCE")), "true")
	if runOnce {
		sum, err := svc.RefreshAllGuilds(ctx, time.Now())
		if err != nil {
			logger.Error("refresh sweep failed", "err", err)
			os.Exit(1)
		}
		logger.Info("worker run-once completed", "guilds", sum.GuildsProcessed, "users", sum.UsersRefreshed)
		return
	}

	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           promhttp.Handler(),
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

	ticker := time.NewTicker(cfg.RefreshEvery)
	defer ticker.Stop()

	logger.Info("worker started", "refresh_every", cfg.RefreshEvery.String(), "metrics_addr", cfg.MetricsAddr)
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutdown")
			return
		case <-ticker.C:
			sum, err := svc.RefreshAllGuilds(ctx, time.Now())
			if err != nil {
				logger.Error("refresh sweep failed", "err", err)
				continue
			}
			logger.Info("refresh sweep complete", "guilds", sum.GuildsProcessed, "users", sum.UsersRefreshed, "failed", sum.GuildsFailed)
		}
	}
}
