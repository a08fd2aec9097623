package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "Path to YAML config (TANKS_CONFIG overrides)")
	addr := flag.String("addr", "", "HTTP listen address (overrides server.addr)")
	flag.Parse()

	if env := os.Getenv("TANKS_CONFIG"); env != "" {
		*configPath = env
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		slog.Error("loading config", slog.Any("err", err))
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger := newLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	world := NewWorld(cfg, logger)
	hub := NewHub(world, cfg.Server, logger)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           SetupRoutes(hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return world.Run(ctx) })
	g.Go(func() error { return hub.Run(ctx) })
	g.Go(func() error {
		logger.Info("server starting", slog.String("addr", cfg.Server.Addr),
			slog.Float64("map_size", cfg.Physics.MapSize), slog.Int("obstacles", len(cfg.Obstacles)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
