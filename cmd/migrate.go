package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsuyoshi-3110/concierge/db"
	"github.com/tsuyoshi-3110/concierge/internal/config"
	"github.com/tsuyoshi-3110/concierge/internal/log"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cfg.DatabaseURL == "" {
			return config.ErrMissingDatabaseURL
		}
		logger := log.New(log.Config{JSON: cfg.LogJSON})
		return db.Migrate(cfg.DatabaseURL, logger)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
