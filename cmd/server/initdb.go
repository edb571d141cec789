package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"formgrid-backend/internal/config"
	"formgrid-backend/internal/store"
)

var flagReset bool

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the metadata tables, optionally seeding sample data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if cfg.Database.IsSQLite() {
			if err := os.MkdirAll(cfg.Database.Path, 0o755); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}
		}

		db, err := store.New(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		if err := db.Bootstrap(ctx); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
		log.Println("Metadata tables ready")

		if flagReset {
			if err := db.Seed(ctx); err != nil {
				return fmt.Errorf("seed sample data: %w", err)
			}
			log.Println("Sample catalogue seeded")
		}

		return nil
	},
}

func init() {
	initDBCmd.Flags().BoolVar(&flagReset, "reset", false, "replace sample entities and their rows")
}
