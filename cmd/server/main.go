package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"

	"storefront/config"
	"storefront/internal/logger"
	"storefront/internal/registry"
	"storefront/internal/validation"
	"storefront/internal/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Fatal().Err(err).Msg("Server error")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := validation.ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Init(cfg.LogLevel)
	log := logger.Get()
	log.Info().
		Str("version", version.Version).
		Str("commit", version.Commit).
		Msg("Storefront starting")
	log.Info().
		Str("env", string(cfg.Env)).
		Str("log_level", cfg.LogLevel).
		Str("log_format", cfg.LogFormat).
		Str("timezone", cfg.Timezone).
		Bool("locale_detection", cfg.LocaleDetection).
		Bool("staging_gate", len(cfg.Staging.ProductionHosts) > 0).
		Msg("Configuration loaded")

	deps, cleanup, err := newDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	sizes := deps.registry.Sizes()
	tables := log.Info()
	for _, name := range registry.SortedSizeNames(sizes) {
		tables = tables.Int(name, sizes[name])
	}
	tables.Msg("Routing tables loaded")

	deps.metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	handler, err := buildRouter(deps)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", cfg.Port, err)
	}
	return serve(ctx, listener, handler)
}

// serve runs the HTTP server on listener until ctx is done, then drains
// in-flight requests.
func serve(ctx context.Context, listener net.Listener, handler http.Handler) error {
	log := logger.Get()
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", listener.Addr().String()).Msg("Server starting")
		serveErr <- srv.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("Server stopped")
	return nil
}
