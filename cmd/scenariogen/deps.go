package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Strob0t/scenariogen/internal/adapter/agentbeats"
	"github.com/Strob0t/scenariogen/internal/adapter/compose"
	sgnats "github.com/Strob0t/scenariogen/internal/adapter/nats"
	"github.com/Strob0t/scenariogen/internal/adapter/otel"
	"github.com/Strob0t/scenariogen/internal/adapter/ristretto"
	"github.com/Strob0t/scenariogen/internal/config"
	"github.com/Strob0t/scenariogen/internal/port/catalog"
	"github.com/Strob0t/scenariogen/internal/resilience"
	"github.com/Strob0t/scenariogen/internal/service"
)

// buildCompiler wires the catalog client, cache, telemetry and event
// publisher into a CompilerService. cleanup releases everything it opened.
func buildCompiler(ctx context.Context, cfg *config.Config) (*service.CompilerService, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	shutdownOTEL, err := otel.Setup(ctx, cfg.OTEL)
	if err != nil {
		return nil, nil, fmt.Errorf("otel: %w", err)
	}
	closers = append(closers, func() {
		if err := shutdownOTEL(context.Background()); err != nil {
			slog.Warn("otel shutdown failed", "error", err)
		}
	})

	metrics, err := otel.NewMetrics()
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("otel metrics: %w", err)
	}

	client := agentbeats.NewClient(cfg.Catalog.URL, cfg.Catalog.Timeout)
	client.SetBreaker(resilience.NewBreaker("agentbeats", cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	var lookup catalog.Lookup = client
	if cfg.Catalog.CacheEntries > 0 {
		cached, err := ristretto.New(client, cfg.Catalog.CacheEntries, cfg.Catalog.CacheTTL)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("catalog cache: %w", err)
		}
		closers = append(closers, cached.Close)
		lookup = cached
	}

	restricted := cfg.Restricted()
	if restricted {
		slog.Info("restricted mode: direct image references are rejected")
	}

	resolver := service.NewImageResolver(lookup, restricted)
	resolver.SetMetrics(metrics)

	opts := compose.Options{ScenarioFile: cfg.Output.ScenarioFile, OutputDir: cfg.Output.ResultsDir}
	compiler := service.NewCompilerService(resolver, opts, cfg.Catalog.MaxParallel)
	compiler.SetMetrics(metrics)

	if cfg.NATS.URL != "" {
		pub, err := sgnats.Connect(ctx, cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("nats: %w", err)
		}
		closers = append(closers, func() {
			if err := pub.Close(); err != nil {
				slog.Warn("nats close failed", "error", err)
			}
		})
		compiler.SetPublisher(pub, cfg.NATS.Subject)
	}

	return compiler, cleanup, nil
}
