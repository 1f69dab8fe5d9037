// Package db opens the database and keeps its schema current.
package db

import (
	"fmt"
	"time"

	"github.com/diewo77/go-rentals/internal/config"
	"github.com/diewo77/go-rentals/internal/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// retryDelay is the pause between two Postgres connection attempts.
var retryDelay = 2 * time.Second

// Connect opens the database described by cfg. Postgres is retried to give
// the server time to start; SQLite is opened once.
func Connect(cfg config.DatabaseConfig, dbLogLevel string, log *zap.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger: logger.NewGormLogger(log, logger.GormLevel(dbLogLevel), cfg.SlowQuery),
	}

	if cfg.Driver == "sqlite" {
		log.Info("opening sqlite database", zap.String("path", cfg.SQLitePath))
		conn, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		return conn, nil
	}

	dsn := NormalizeDSN(cfg.DSN())
	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	var (
		conn *gorm.DB
		err  error
	)
	for i := 1; i <= attempts; i++ {
		conn, err = gorm.Open(postgres.Open(dsn), gcfg)
		if err == nil {
			err = conn.Exec("SELECT 1").Error
		}
		if err == nil {
			break
		}
		log.Warn("database connection failed",
			zap.Int("attempt", i),
			zap.Int("of", attempts),
			zap.Error(err),
		)
		if i < attempts {
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after %d attempts: %w", attempts, err)
	}
	log.Info("connected to database", zap.String("dsn", MaskDSN(dsn)))
	return conn, nil
}

// Ping reports whether the database answers a trivial query.
func Ping(conn *gorm.DB) error {
	return conn.Exec("SELECT 1").Error
}
