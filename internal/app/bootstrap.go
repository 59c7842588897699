// Package app wires configuration into the shared runtime dependencies
// used by the server, migrate and manage commands.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/coreapp/internal/config"
	"github.com/ignite/coreapp/internal/password"
	"github.com/ignite/coreapp/internal/pkg/distlock"
	"github.com/ignite/coreapp/internal/pkg/logger"
	"github.com/ignite/coreapp/internal/repository/postgres"
)

const (
	migrateLockKey  = "schema-migrate"
	migrateLockTTL  = 5 * time.Minute
	migrateLockWait = 2 * time.Minute
)

// ConfigureLogging applies the logging section to the package logger.
func ConfigureLogging(cfg config.LoggingConfig) {
	logger.SetLevel(logger.ParseLevel(cfg.Level))
	logger.SetRedactPII(cfg.ShouldRedactPII())
}

// OpenDB opens the Postgres pool and verifies it answers within 3 seconds.
func OpenDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database url is required (set DATABASE_URL)")
	}
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime())

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// OpenRedis connects to Redis when an address is configured. It returns
// nil when Redis is disabled or unreachable; callers then fall back to
// Postgres advisory locks.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		logger.Info("redis not configured, using postgres advisory locks")
		return nil
	}

	var client *redis.Client
	if opts, err := redis.ParseURL(cfg.Addr); err == nil {
		client = redis.NewClient(opts)
	} else {
		client = redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, using postgres advisory locks", "addr", cfg.Addr, "error", err)
		client.Close()
		return nil
	}
	logger.Info("redis connected", "addr", cfg.Addr)
	return client
}

// NewPasswords builds the password manager from the password section.
func NewPasswords(cfg config.PasswordConfig) (*password.Manager, error) {
	return password.New(cfg.Hasher, cfg.BcryptCost, cfg.PBKDF2Iterations)
}

// Migrate applies pending schema migrations while holding the cluster-wide
// migration lock, so concurrently starting instances migrate once. A Redis
// lock is renewed for as long as the migrations run.
func Migrate(ctx context.Context, db *sql.DB, redisClient *redis.Client) ([]string, error) {
	lock := distlock.NewLock(redisClient, db, migrateLockKey, migrateLockTTL)

	var applied []string
	err := distlock.WithLock(ctx, lock, migrateLockWait, func(ctx context.Context) error {
		var err error
		applied, err = postgres.Migrate(ctx, db)
		return err
	})
	if err != nil {
		return applied, fmt.Errorf("migrate: %w", err)
	}
	if len(applied) == 0 {
		logger.Info("schema up to date")
	}
	return applied, nil
}
