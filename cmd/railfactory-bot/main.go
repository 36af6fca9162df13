package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"railfactory/internal/bot"
	"railfactory/internal/config"
	"railfactory/internal/db"
	"railfactory/internal/game"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadBotFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	pool, err := db.Connect(ctx, cfg.DatabaseURL, 20)
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

	gameSvc := game.NewService(pool, logger)
	b, err := bot.New(cfg.DiscordToken, gameSvc, logger)
	if err != nil {
		logger.Error("bot init failed", "err", err)
		os.Exit(1)
	}

	if err := b.Open(cfg.CommandGuildID); err != nil {
		logger.Error("bot open failed", "err", err)
		os.Exit(1)
	}
	logger.Info("bot running")

	<-ctx.Done()
	if err := b.Close(); err != nil {
		logger.Error("bot close failed", "err", err)
	}
	logger.Info("bot shutdown")
}
