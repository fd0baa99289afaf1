// Command userctl creates users against a configurable event store backend.
//
// Configuration is read from the environment: BACKEND (memory, nats, sqlite,
// redis), NATS_URL, REDIS_ADDR, SQLITE_PATH, N (users to create),
// CONCURRENCY, LOG_LEVEL, METRICS_ADDR and HASH_MEMORY_KIB.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/codewandler/userstore-go/adapters/prometheus"
	"github.com/codewandler/userstore-go/app/users"
	"github.com/codewandler/userstore-go/core/es"
	"github.com/codewandler/userstore-go/domain/user"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "userctl:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	reg := prom.NewRegistry()
	created := prometheus.NewCounter(reg, "userstore_users_created_total", "Users created by userctl")
	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server", slog.Any("err", err))
			}
		}()
		defer srv.Close()
	}

	hasher := users.DefaultArgon2Hasher()
	hasher.Memory = cfg.HashMemory
	if err := hasher.Validate(); err != nil {
		return fmt.Errorf("HASH_MEMORY_KIB: %w", err)
	}

	be, err := openBackend(ctx, log, cfg)
	if err != nil {
		return err
	}
	defer be.close()

	opts := []es.EnvOption{
		es.WithLog(log),
		es.WithStore(be.store),
		es.WithRegisterFunc(user.Register),
		es.WithMetrics(prometheus.NewESMetrics(reg)),
	}
	if be.publisher != nil {
		opts = append(opts, es.WithPublisher(be.publisher))
	}
	env, err := es.NewEnv(opts...)
	if err != nil {
		return err
	}

	var published atomic.Int64
	if p, ok := env.Publisher().(*es.InProcessPublisher); ok {
		p.Subscribe(func(_ context.Context, ev any) error {
			published.Add(1)
			log.Debug("event", slog.String("type", es.EventTypeOf(ev)))
			return nil
		})
	}

	svc := users.NewService(log, env.Repository(), hasher)

	log.Info(
		"creating users",
		slog.String("backend", cfg.Backend),
		slog.Int("n", cfg.N),
		slog.Int("concurrency", cfg.Concurrency),
	)

	var (
		startAt = time.Now()
		lastID  atomic.Value
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i := range cfg.N {
		g.Go(func() error {
			id, err := svc.CreateUser(gctx, users.CreateUserCommand{
				Name:     fmt.Sprintf("User %d", i),
				Email:    fmt.Sprintf("user-%d@example.com", i),
				Password: fmt.Sprintf("password-%06d", i),
			})
			if err != nil {
				return fmt.Errorf("user %d: %w", i, err)
			}
			created.Inc()
			lastID.Store(id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	took := time.Since(startAt)
	fmt.Printf("total runtime: %.3f seconds\n", took.Seconds())
	fmt.Printf("users created: %d\n", cfg.N)
	fmt.Printf(" avg. users/s: %d\n", int(float64(cfg.N)/took.Seconds()))
	if n := published.Load(); n > 0 {
		fmt.Printf("  events seen: %d\n", n)
	}

	if id, ok := lastID.Load().(string); ok {
		streamID, err := es.NewStreamID(new(user.User).GetAggType(), id)
		if err != nil {
			return err
		}
		records, err := env.ReadStream(ctx, streamID)
		if err != nil {
			return fmt.Errorf("read back %s: %w", id, err)
		}
		for _, r := range records {
			log.Info("read back", r.LogAttrs())
		}
	}
	return nil
}
