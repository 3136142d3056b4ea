package collector

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler returns a context cancelled on the first SIGTERM or
// SIGINT, after onShutdown (if any) has run. A second signal exits the process.
func SetupSignalHandler(logger *slog.Logger, onShutdown func(context.Context)) context.Context {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-sigCh
		logger.Info("shutdown signal received, stopping", "signal", sig.String())
		if onShutdown != nil {
			onShutdown(ctx)
		}
		cancel()

		sig = <-sigCh
		logger.Warn("second signal received, forcing exit", "signal", sig.String())
		os.Exit(1)
	}()

	return ctx
}
