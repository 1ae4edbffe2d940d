package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"timegate/internal/api"
	"timegate/internal/config"
	"timegate/internal/geofence"
	"timegate/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, cfg *config.Config) func(ctx context.Context) {
	validator := geofence.FromConfig(cfg)
	if validator.Dynamic() {
		// this disables the geofence entirely; make it impossible to miss
		logger.Warn(ctx, "geofence is in dynamic mode, every coordinate will be admitted",
			zap.Bool("dynamic_flag", cfg.Geofence.Dynamic),
			zap.Int("configured_regions", len(cfg.Geofence.Regions)))
	} else {
		logger.Info(ctx, "geofence configured",
			zap.Int("regions", len(cfg.Geofence.Regions)))
	}

	server, err := api.NewServer(api.Deps{Geofence: validator}, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...")
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the gateway API server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

			stopWebserver := setupServer(ctx, cfg)

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
		},
	}

	return cmd
}
