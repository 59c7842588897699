package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/ignite/coreapp/internal/app"
	"github.com/ignite/coreapp/internal/config"
	"github.com/ignite/coreapp/internal/pkg/logger"
	"github.com/ignite/coreapp/internal/repository/postgres"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	listOnly := flag.Bool("list", false, "show migration status without applying anything")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	app.ConfigureLogging(cfg.Logging)

	ctx := context.Background()
	db, err := app.OpenDB(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if *listOnly {
		if err := list(ctx, db); err != nil {
			logger.Error("failed to list migrations", "error", err)
			os.Exit(1)
		}
		return
	}

	redisClient := app.OpenRedis(ctx, cfg.Redis)
	if redisClient != nil {
		defer redisClient.Close()
	}

	applied, err := app.Migrate(ctx, db, redisClient)
	if err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Applied %d migration(s)\n", len(applied))
}

func list(ctx context.Context, db *sql.DB) error {
	done, err := postgres.Applied(ctx, db)
	if err != nil {
		return err
	}
	all, err := postgres.Migrations()
	if err != nil {
		return err
	}
	pending := 0
	for _, m := range all {
		mark := "[x]"
		if !done[m.Version] {
			mark = "[ ]"
			pending++
		}
		fmt.Printf("  %s %s\n", mark, m.Version)
	}
	fmt.Printf("Total: %d migrations, %d pending\n", len(all), pending)
	return nil
}
