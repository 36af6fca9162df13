package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type BotConfig struct {
	DiscordToken   string
	DatabaseURL    string
	CommandGuildID string // when set, slash commands register to one guild only
	RunMigrations  bool
}

type WorkerConfig struct {
	DatabaseURL   string
	RefreshEvery  time.Duration
	MetricsAddr   string
	RunMigrations bool
}

type APIConfig struct {
	Addr        string
	DatabaseURL string
}

type CTLConfig struct {
	APIBaseURL string
}

func LoadBotFromEnv() (BotConfig, error) {
	cfg := BotConfig{
		DiscordToken:   strings.TrimSpace(os.Getenv("DISCORD_TOKEN")),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		CommandGuildID: strings.TrimSpace(os.Getenv("RAILFACTORY_COMMAND_GUILD_ID")),
		RunMigrations:  envBoolDefault("RAILFACTORY_MIGRATE", true),
	}
	if cfg.DiscordToken == "" {
		return cfg, fmt.Errorf("DISCORD_TOKEN is required")
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func LoadWorkerFromEnv() (WorkerConfig, error) {
	cfg := WorkerConfig{
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RefreshEvery:  envDurationDefault("RAILFACTORY_REFRESH_EVERY", 5*time.Minute),
		MetricsAddr:   envDefault("RAILFACTORY_METRICS_ADDR", ":9190"),
		RunMigrations: envBoolDefault("RAILFACTORY_MIGRATE", true),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func LoadAPIFromEnv() (APIConfig, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("RAILFACTORY_API_ADDR", ":8080")
	}
	cfg := APIConfig{
		Addr:        addr,
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func LoadCTLFromEnv() CTLConfig {
	return CTLConfig{
		APIBaseURL: strings.TrimRight(envDefault("RAILCTL_API_BASE_URL", "http://localhost:8080"), "/"),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
