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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"rankdelta/internal/compare"
	"rankdelta/internal/config"
	"rankdelta/internal/dataset"
	"rankdelta/internal/db"
	"rankdelta/internal/logging"
	"rankdelta/internal/metrics"
	"rankdelta/internal/riot"
	"rankdelta/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, closer, err := logging.New(cfg.Log, "server.log")
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	client, err := riot.NewClient(cfg.Riot.APIKey,
		riot.WithHTTPClient(&http.Client{Timeout: cfg.Riot.HTTPTimeout}),
		riot.WithRetry(cfg.Riot.MaxAttempts, cfg.Riot.BaseBackoff),
		riot.WithCourtesyDelay(cfg.Riot.CourtesyDelay),
		riot.WithLogger(logger),
		riot.WithMetrics(m),
	)
	if err != nil {
		return err
	}
	blobs, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return err
	}

	h := &handlers{
		comparer: compare.NewOrchestrator(dataset.NewLoader(blobs, logger, m), client, logger, m),
		logger:   logger.With("component", "http"),
	}
	switch summaries, err := db.Open(ctx, cfg.Summary); {
	case errors.Is(err, db.ErrNotConfigured):
		logger.Info("no summary database configured, /cohorts disabled")
	case err != nil:
		return fmt.Errorf("open summary database: %w", err)
	default:
		defer summaries.Close()
		h.summaries = summaries
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newRouter(h, cfg.Server.CORSOrigins, reg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", "addr", srv.Addr, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}
