package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
)

// NOTE: run nats: docker run --net=host nats:latest -js
//       run redis: docker run --net=host redis:7-alpine

type config struct {
	Backend     string // memory | nats | sqlite | redis
	NatsURL     string
	RedisAddr   string
	SQLitePath  string
	N           int
	Concurrency int
	LogLevel    slog.Level
	MetricsAddr string
	HashMemory  uint32 // KiB per argon2 hash
}

func loadConfig() (config, error) {
	cfg := config{
		Backend:     strings.ToLower(getEnv("BACKEND", "memory")),
		NatsURL:     getEnv("NATS_URL", "nats://127.0.0.1:4222"),
		RedisAddr:   getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		SQLitePath:  getEnv("SQLITE_PATH", "userstore.db"),
		N:           getEnvInt("N", 100),
		Concurrency: getEnvInt("CONCURRENCY", 8),
		MetricsAddr: getEnv("METRICS_ADDR", ""),
	}
	hashMemory := getEnvInt("HASH_MEMORY_KIB", 64*1024)
	if hashMemory < 1 || uint64(hashMemory) > math.MaxUint32 {
		return cfg, fmt.Errorf("HASH_MEMORY_KIB: must be positive, got %d", hashMemory)
	}
	cfg.HashMemory = uint32(hashMemory)
	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return cfg, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	switch cfg.Backend {
	case "memory", "nats", "sqlite", "redis":
	default:
		return cfg, fmt.Errorf("BACKEND: unknown backend %q", cfg.Backend)
	}
	if cfg.N < 1 {
		return cfg, fmt.Errorf("N: must be positive, got %d", cfg.N)
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return v
}
