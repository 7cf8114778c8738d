package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkotecha/crickwatch/internal/app"
	"github.com/mkotecha/crickwatch/internal/metrics"
)

// newMonitorCmd creates the 'monitor' subcommand: the long-running poll loop
// plus the ops HTTP server.
func newMonitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Starts the score monitor",
		Long: `Polls the live score index on the configured interval, classifies each
tracked match, and delivers alerts. Also serves health probes, metrics and
the tracking API over HTTP.`,

		RunE: runMonitorCommand,
	}
}

func runMonitorCommand(cmd *cobra.Command, _ []string) error {
	instance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	log := instance.Logger

	metrics.Init()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", instance.Config.Server.Port),
		Handler:           instance.API.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	pollerErr := make(chan error, 1)
	go func() {
		pollerErr <- instance.Poller.Run(ctx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case runErr = <-serverErr:
		log.Error("http server failed", zap.Error(runErr))
		stop()
	case runErr = <-pollerErr:
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			log.Error("poller failed", zap.Error(runErr))
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown failed", zap.Error(err))
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("monitor: %w", runErr)
	}
	log.Info("monitor stopped")
	return nil
}

func resolveApp(ctx context.Context) (*app.App, error) {
	instance, ok := ctx.Value(appKey).(*app.App)
	if !ok || instance == nil {
		return nil, errors.New("application services not initialized")
	}
	return instance, nil
}
