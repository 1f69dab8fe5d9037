package db

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/diewo77/go-rentals/internal/config"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNormalizeDSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "  ", ""},
		{"url untouched", "postgres://u:p@h:5432/db", "postgres://u:p@h:5432/db"},
		{"quoted url", `"postgresql://u@h/db"`, "postgresql://u@h/db"},
		{"kv adds sslmode", "host=h   user=u dbname=d", "host=h user=u dbname=d sslmode=disable"},
		{"kv keeps sslmode", "host=h sslmode=require", "host=h sslmode=require"},
		{"garbage untouched", "nonsense", "nonsense"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDSN(tt.in))
		})
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "host=h password=*** dbname=d", MaskDSN("host=h password=secret dbname=d"))
	assert.Equal(t, "postgres://u:***@h:5432/db", MaskDSN("postgres://u:secret@h:5432/db"))
	assert.Equal(t, "postgres://u@h/db", MaskDSN("postgres://u@h/db"))
}

func TestConnectSQLiteAndSetup(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "test.db")}

	conn, err := Connect(cfg, "silent", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, Ping(conn))

	// SQL migrations are postgres only, Setup falls back to AutoMigrate.
	require.NoError(t, Setup(conn, true, zap.NewNop()))
	for _, m := range models.All() {
		assert.True(t, conn.Migrator().HasTable(m), "missing table for %T", m)
	}

	assert.Error(t, MigrateSQL(conn, zap.NewNop()))
}

func TestEmbeddedMigrations(t *testing.T) {
	ups, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationFiles, "migrations/*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups), "every up migration has a down migration")

	body, err := fs.ReadFile(migrationFiles, ups[0])
	require.NoError(t, err)
	for _, table := range []string{"users", "homes", "rooms", "services", "settings", "invoices"} {
		assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS "+table+" ")
	}
}
