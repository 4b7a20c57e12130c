package migration

import (
	"io/fs"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/invoicing/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEmbeddedMigrations(t *testing.T) {
	for _, dir := range []string{"migrations/postgres", "migrations/sqlite"} {
		up, err := fs.ReadFile(embeddedMigrations, dir+"/0001_create_invoices.up.sql")
		require.NoError(t, err, dir)
		assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS invoices")

		_, err = fs.ReadFile(embeddedMigrations, dir+"/0001_create_invoices.down.sql")
		assert.NoError(t, err, dir)
	}
}

func TestShouldMigrate(t *testing.T) {
	assert.True(t, shouldMigrate(config.Config{DBType: "postgres", DBAutoMigrate: true}))
	assert.True(t, shouldMigrate(config.Config{DBType: "sqlite", DBAutoMigrate: true}))
	assert.False(t, shouldMigrate(config.Config{DBType: "postgres"}))
	assert.False(t, shouldMigrate(config.Config{DBType: "sqlite"}))
	assert.False(t, shouldMigrate(config.Config{DBType: "mysql", DBAutoMigrate: true}))
}

func TestRunMigrationsRequiresHandle(t *testing.T) {
	assert.Error(t, RunMigrations(nil, "sqlite"))
}

func TestRunMigrationsSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migration_sqlite?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, RunMigrations(sqlDB, "sqlite"))
	require.NoError(t, RunMigrations(sqlDB, "sqlite"), "second run is a no-op")

	var id string
	require.NoError(t, db.Raw(
		`INSERT INTO invoices (customer_id, amount, status, date) VALUES (?, ?, ?, ?) RETURNING id`,
		"c1", 1550, "pending", "2026-10-14",
	).Scan(&id).Error)
	assert.NotEmpty(t, id)

	assert.Error(t, db.Exec(
		`INSERT INTO invoices (customer_id, amount, status, date) VALUES (?, ?, ?, ?)`,
		"c1", 0, "pending", "2026-10-14",
	).Error)
	assert.Error(t, db.Exec(
		`INSERT INTO invoices (customer_id, amount, status, date) VALUES (?, ?, ?, ?)`,
		"c1", 10, "overdue", "2026-10-14",
	).Error)
	assert.Error(t, db.Exec(
		`INSERT INTO invoices (customer_id, amount, status, date) VALUES (?, ?, ?, ?)`,
		"c1", 10, "paid", "14/10/2026",
	).Error)
}

func TestRunMigrationsUnknownType(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migration_unknown?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	assert.Error(t, RunMigrations(sqlDB, "mysql"))
}
