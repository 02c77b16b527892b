// Package main serves the boolean query engine over HTTP. It is a separate
// process from cmd/build: the builder and the query server never share
// mutable state (spec.md §5), so cmd/serve only ever opens the final index
// read-only.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corpusdex/indexer/internal/api"
	"github.com/corpusdex/indexer/internal/buildconfig"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := buildconfig.Load(envOrDefault("CDX_CONFIG", "config.yaml"))
	if err != nil {
		logger.Error("loading config", "error", err)
		os.Exit(1)
	}

	addr := envOrDefault("CDX_SERVE_ADDR", "0.0.0.0:8080")
	server := api.NewServer(addr, cfg.FinalIndexDir, cfg.DocMapPath, cfg.DocMappingBackend, cfg.SQLitePath, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting query API", "addr", addr, "final_index_dir", cfg.FinalIndexDir)
		if err := server.Start(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("query API server error", "error", err)
		os.Exit(1)
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error shutting down query API", "error", err)
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
