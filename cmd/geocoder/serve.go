package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/couchcryptid/geocoder/internal/adapter/http"
	"github.com/couchcryptid/geocoder/internal/config"
	"github.com/couchcryptid/geocoder/internal/observability"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the geocoding HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFrom(v)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cmd, cfg)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	bindFlags(v, cmd.Flags().Lookup, map[string]string{"http_addr": "addr"})
	return cmd
}

func serve(parent context.Context, cmd *cobra.Command, cfg *config.Config) error {
	logger := observability.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	reg, err := buildRegistry(cfg, metrics, logger)
	if err != nil {
		return err
	}
	defer reg.Close()
	if len(reg.Names()) == 0 {
		logger.Warn("no geocoding provider enabled; /readyz will report not ready")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, reg, logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("http server error", "error", err)
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
