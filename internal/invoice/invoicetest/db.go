// Package invoicetest provides an in-memory invoices store for tests.
package invoicetest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/invoicing/internal/migration"
	pkgdb "github.com/smallbiznis/invoicing/pkg/db"
	"gorm.io/gorm"
)

// NewDB opens a private in-memory SQLite database migrated with the
// embedded sqlite migration set.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migration.RunMigrations(sqlDB, pkgdb.TypeSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Seed inserts a row directly and returns its id.
func Seed(t *testing.T, db *gorm.DB, id, customerID string, amount int64, status, date string) string {
	t.Helper()

	err := db.Exec(
		`INSERT INTO invoices (id, customer_id, amount, status, date) VALUES (?, ?, ?, ?, ?)`,
		id, customerID, amount, status, date,
	).Error
	if err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	return id
}

// Count returns the number of rows in invoices.
func Count(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var n int64
	if err := db.Raw(`SELECT COUNT(*) FROM invoices`).Scan(&n).Error; err != nil {
		t.Fatalf("count invoices: %v", err)
	}
	return n
}
