package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/keepsake-app/keepsake-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "migrate.db")), &gorm.Config{})
	require.NoError(t, err)
	return conn
}

func TestRunEmbeddedSQLiteUpAndDown(t *testing.T) {
	conn := openSQLite(t)
	sqlDB, err := conn.DB()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, Run(ctx, sqlDB, config.DBDriverSQLite, "", "up"))

	assert.True(t, conn.Migrator().HasTable("photos"))
	assert.True(t, conn.Migrator().HasTable("wishlist"))

	require.NoError(t, conn.Exec("INSERT INTO wishlist (item_name) VALUES ('Lamp')").Error)
	var row struct {
		Emoji     string
		Store     string
		Purchased bool
	}
	require.NoError(t, conn.Raw("SELECT emoji, store, purchased FROM wishlist").Scan(&row).Error)
	assert.Equal(t, "🎁", row.Emoji)
	assert.Equal(t, "other", row.Store)
	assert.False(t, row.Purchased)

	require.NoError(t, Run(ctx, sqlDB, config.DBDriverSQLite, "", "down"))
	assert.False(t, conn.Migrator().HasTable("wishlist"))
	assert.True(t, conn.Migrator().HasTable("photos"))
}

func TestRunRejectsUnknownDriver(t *testing.T) {
	conn := openSQLite(t)
	sqlDB, err := conn.DB()
	require.NoError(t, err)

	err = Run(context.Background(), sqlDB, "mysql", "", "up")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported migration driver")
}

func TestMigrateToVersion(t *testing.T) {
	conn := openSQLite(t)
	sqlDB, err := conn.DB()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, MigrateToVersion(ctx, sqlDB, config.DBDriverSQLite, "", "20250301120000"))
	assert.True(t, conn.Migrator().HasTable("photos"))
	assert.False(t, conn.Migrator().HasTable("wishlist"))

	require.Error(t, MigrateToVersion(ctx, sqlDB, config.DBDriverSQLite, "", "not-a-version"))
}

func TestEmbeddedMigrationsMatchOnDisk(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))

	for _, driver := range supportedDrivers {
		sub, err := Embedded(driver)
		require.NoError(t, err)
		entries, err := os.ReadDir(DriverDir("migrations", driver))
		require.NoError(t, err)
		for _, e := range entries {
			_, err := sub.Open(e.Name())
			assert.NoError(t, err, "embedded %s missing %s", driver, e.Name())
		}
	}
}

func TestPostgresMigrationUsesBooleanPurchased(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "postgres", "*_create_wishlist.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "purchased BOOLEAN NOT NULL DEFAULT FALSE"))
}

func TestCreateSQLMigrationWritesEveryDriver(t *testing.T) {
	root := t.TempDir()
	created, err := CreateSQLMigration(root, "Add Notes Column!")
	require.NoError(t, err)
	require.Len(t, created, len(supportedDrivers))

	for _, path := range created {
		assert.True(t, strings.HasSuffix(path, "_add_notes_column.sql"), path)
	}
	require.NoError(t, ValidateDir(root))

	_, err = CreateSQLMigration(root, "  !!  ")
	require.Error(t, err)
}

func TestValidateDirDetectsMismatch(t *testing.T) {
	root := t.TempDir()
	header := "-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n"
	require.NoError(t, os.MkdirAll(filepath.Join(root, "postgres"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sqlite"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "postgres", "20250101000000_a.sql"), []byte(header), 0o644))

	err := ValidateDir(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "do not match")
}
