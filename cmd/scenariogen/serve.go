package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	sghttp "github.com/Strob0t/scenariogen/internal/adapter/http"
	"github.com/Strob0t/scenariogen/internal/adapter/otel"
	"github.com/Strob0t/scenariogen/internal/config"
	"github.com/Strob0t/scenariogen/internal/middleware"
)

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", config.DefaultConfigFile, "path to the YAML config file")
	port := fs.String("port", "", "listen port (default: server.port from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, flush, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer flush()
	if *port != "" {
		cfg.Server.Port = *port
	}

	ctx := context.Background()
	compiler, cleanup, err := buildCompiler(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(sghttp.Logger)
	r.Use(sghttp.SecurityHeaders)
	r.Use(chimw.Recoverer)
	r.Use(otel.HTTPMiddleware(cfg.OTEL.ServiceName))
	r.Use(chimw.Timeout(2 * cfg.Catalog.Timeout))

	sghttp.MountRoutes(r, &sghttp.Handlers{Compiler: compiler}, limiter.Handler)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      3 * cfg.Catalog.Timeout,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", addr, "catalog", cfg.Catalog.URL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-done:
	case err := <-errCh:
		return err
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
