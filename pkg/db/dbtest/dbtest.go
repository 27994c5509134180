// Package dbtest opens isolated in-memory SQLite databases for repository tests.
package dbtest

import (
	"testing"

	"github.com/angelmondragon/repairpos/pkg/db"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewClient returns a migrated client over a private in-memory database.
func NewClient(t *testing.T) *db.Client {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	client := db.NewFromGorm(conn, db.DialectSQLite)
	if err := client.AutoMigrate(); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return client
}
