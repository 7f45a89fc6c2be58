package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/rbx-client/internal/config"
	"github.com/Sternrassler/rbx-client/pkg/client"
	"github.com/Sternrassler/rbx-client/pkg/cooldown"
	"github.com/Sternrassler/rbx-client/pkg/egress"
	"github.com/Sternrassler/rbx-client/pkg/logging"
	"github.com/Sternrassler/rbx-client/pkg/roblox"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})
	logger := logging.NewLogger(logging.ComponentGateway)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool := egress.NewPool(cfg.Descriptors(), logging.NewLogger(logging.ComponentEgress))

	clientCfg := client.DefaultConfig()
	clientCfg.UserAgent = cfg.UserAgent
	clientCfg.Timeout = cfg.RequestTimeout
	clientCfg.MaxAttempts = cfg.MaxAttempts

	rbxClient, err := client.New(pool, clientCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create rbx client")
	}

	opts := []roblox.Option{
		roblox.WithCacheTTL(cfg.CacheTTL),
		roblox.WithPageSize(cfg.PageSize),
	}
	if cfg.APIBaseURL != "" {
		opts = append(opts, roblox.WithEndpoints(roblox.SingleHost(cfg.APIBaseURL)))
	}
	service := roblox.NewService(rbxClient, opts...)

	store, closeStore, err := newCooldownStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to set up cooldown store")
	}
	defer closeStore()
	tracker := cooldown.NewTracker(store, cfg.Cooldown, logging.NewLogger(logging.ComponentCooldown))

	gw := newGateway(service, pool, tracker, logger)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           gw.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info().
		Str("addr", cfg.Addr()).
		Str("user_agent", cfg.UserAgent).
		Int("egress_paths", pool.Count()).
		Dur("cooldown", cfg.Cooldown).
		Bool("redis", cfg.UsesRedis()).
		Msg("Starting rbx gateway")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("Gateway stopped with error")
	}
	logger.Info().Msg("Gateway exited cleanly")
}

// newCooldownStore returns a Redis store when REDIS_URL is set, otherwise an
// in-memory store.
func newCooldownStore(ctx context.Context, cfg *config.Config) (cooldown.Store, func(), error) {
	if !cfg.UsesRedis() {
		return cooldown.NewMemoryStore(nil), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}

	redisClient := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		redisClient.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}

	return cooldown.NewRedisStore(redisClient), func() { redisClient.Close() }, nil
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
