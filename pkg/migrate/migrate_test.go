package migrate

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"storefront-backend/pkg/config"
)

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("shipped migrations should validate: %v", err)
	}
}

func TestRunAppliesMigrationsOnSQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "migrate_test.db")
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db handle: %v", err)
	}

	if err := Run(context.Background(), sqlDB, config.DBDriverSQLite, "migrations", "up"); err != nil {
		t.Fatalf("goose up failed: %v", err)
	}

	for _, table := range []string{"categories", "products", "orders", "order_lines", "sales"} {
		var count int64
		err := conn.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count).Error
		if err != nil {
			t.Fatalf("inspect schema: %v", err)
		}
		if count != 1 {
			t.Fatalf("expected table %q to exist after migration", table)
		}
	}
}

func TestRunRejectsUnknownDriver(t *testing.T) {
	if err := setDialect("mysql"); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}
