package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate runs AutoMigrate for all models.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// MigrateSQL applies the embedded SQL migrations with golang-migrate. Only
// Postgres is supported; SQLite databases use Migrate.
func MigrateSQL(conn *gorm.DB, log *zap.Logger) error {
	if conn.Dialector.Name() != "postgres" {
		return fmt.Errorf("sql migrations need postgres, got %s", conn.Dialector.Name())
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("postgres migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("no migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration up: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("migration version: %w", err)
	}
	log.Info("migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// Setup brings the schema up to date, through SQL migrations when useSQL is
// set and the database is Postgres, otherwise through AutoMigrate.
func Setup(conn *gorm.DB, useSQL bool, log *zap.Logger) error {
	if useSQL && conn.Dialector.Name() == "postgres" {
		return MigrateSQL(conn, log)
	}
	return Migrate(conn)
}
