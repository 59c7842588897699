package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/coreapp/internal/admin"
	"github.com/ignite/coreapp/internal/api"
	"github.com/ignite/coreapp/internal/app"
	"github.com/ignite/coreapp/internal/config"
	"github.com/ignite/coreapp/internal/pkg/logger"
	"github.com/ignite/coreapp/internal/repository/postgres"
	"github.com/ignite/coreapp/internal/service/account"
	"github.com/ignite/coreapp/internal/service/sample"
	"github.com/ignite/coreapp/internal/storage"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %w", port, addr, err)
	}
	ln.Close()
	return nil
}

func fatal(msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}

func main() {
	configPath := "config/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		configPath = v
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		fatal("failed to load config", err)
	}
	app.ConfigureLogging(cfg.Logging)

	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		fatal("pre-flight check failed", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := app.OpenDB(ctx, cfg.Database)
	if err != nil {
		fatal("failed to connect to database", err)
	}
	defer db.Close()

	redisClient := app.OpenRedis(ctx, cfg.Redis)
	if redisClient != nil {
		defer redisClient.Close()
	}

	if cfg.Database.AutoMigrate {
		if _, err := app.Migrate(ctx, db, redisClient); err != nil {
			fatal("auto-migrate failed", err)
		}
	}

	passwords, err := app.NewPasswords(cfg.Password)
	if err != nil {
		fatal("invalid password settings", err)
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		fatal("failed to initialize storage", err)
	}
	uploader := storage.NewUploader(store, cfg.Storage.MaxUploadBytes())

	accounts := account.NewService(postgres.NewAccountRepo(db), passwords)
	samples := sample.NewService(
		postgres.NewSampleRepo(db),
		sample.WithUploads(uploader),
		sample.WithFilePathRoot(cfg.Storage.FilePathRoot),
	)

	site, err := admin.NewDefaultSite()
	if err != nil {
		fatal("failed to register admin models", err)
	}

	handlers := api.NewHandlers(accounts, samples, passwords, site, cfg.Admin, cfg.Storage.MaxUploadBytes())
	health := api.NewHealthChecker(db, redisClient, store)
	server := api.NewServer(cfg.Server, handlers, health)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, cfg.Server.Port)
		logger.Info("starting server", "addr", addr, "storage", cfg.Storage.Type)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			fatal("server error", err)
		}
	}()

	<-done
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
