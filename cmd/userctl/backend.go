package main

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/codewandler/userstore-go/adapters/nats"
	"github.com/codewandler/userstore-go/adapters/redis"
	"github.com/codewandler/userstore-go/adapters/sqlite"
	"github.com/codewandler/userstore-go/core/es"
)

// backend bundles the store and publisher for the configured BACKEND and
// the cleanup to run on exit.
type backend struct {
	store     es.EventStore
	publisher es.Publisher
	close     func()
}

func openBackend(ctx context.Context, log *slog.Logger, cfg config) (*backend, error) {
	switch cfg.Backend {
	case "nats":
		connect := nats.ReuseConnection(nats.ConnectURL(cfg.NatsURL))
		store, err := nats.NewEventStore(nats.EventStoreConfig{
			Connect: connect,
			Log:     log,
		})
		if err != nil {
			return nil, fmt.Errorf("nats store: %w", err)
		}
		pub, err := nats.NewPublisher(nats.PublisherConfig{
			Connect: connect,
			Log:     log,
		})
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("nats publisher: %w", err)
		}
		return &backend{
			store:     store,
			publisher: pub,
			close: func() {
				_ = pub.Close()
				_ = store.Close()
			},
		}, nil

	case "sqlite":
		store, err := sqlite.NewEventStore(ctx, sqlite.Config{Path: cfg.SQLitePath, Log: log})
		if err != nil {
			return nil, err
		}
		return &backend{store: store, close: func() { _ = store.Close() }}, nil

	case "redis":
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		store, err := redis.NewEventStore(redis.Config{Client: client, Log: log})
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return &backend{store: store, close: func() { _ = client.Close() }}, nil

	default:
		return &backend{store: es.NewInMemoryStore(), close: func() {}}, nil
	}
}
