package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"formgrid-backend/internal/config"
	"formgrid-backend/internal/server"
	"formgrid-backend/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Metadata-driven form/table backend",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initDBCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log.Printf("Config loaded (port: %d, driver: %s)", cfg.Server.Port, cfg.Database.Driver)

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
	log.Println("Database connected")

	if err := db.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}
	log.Println("Metadata tables ready")

	app := server.New(db)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	return app.Listen(addr)
}
