package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unishare/unishare/internal/config"
	"github.com/unishare/unishare/internal/db"
	"github.com/unishare/unishare/internal/logger"
)

func main() {
	root := &cobra.Command{
		Use:   "unishare",
		Short: "UniShare document sharing backend",
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and Telegram webhook listener",
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger.Init(cfg.Log.Level, cfg.Log.Format)
			if err := db.Migrate(cfg.Postgres); err != nil {
				return err
			}
			logger.L.Info("migrations applied")
			return nil
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
