package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tsuyoshi-3110/concierge/api"
	"github.com/tsuyoshi-3110/concierge/internal/app"
	"github.com/tsuyoshi-3110/concierge/internal/config"
	"github.com/tsuyoshi-3110/concierge/internal/log"
)

var serveTrustProxy bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveTrustProxy, "trust-proxy", false,
		"trust X-Real-IP / X-Forwarded-For headers (enable only behind a reverse proxy)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.New(log.Config{JSON: cfg.LogJSON})
	logger.Info("starting concierge", "version", AppVersion)

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer a.Close()

	srv := api.NewServer(a.Pipeline, a.Notifier, a.Pool, logger)
	if serveTrustProxy {
		srv.TrustProxy()
	}
	return srv.Run(ctx, cfg.Addr)
}
