package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/keepsake-app/keepsake-backend/pkg/config"
	"github.com/pressly/goose/v3"
)

// DefaultDir is the on-disk root used by the create and validate commands.
// Each driver keeps its own subdirectory.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var embedded embed.FS

// Dialect maps a configured driver onto the goose dialect name.
func Dialect(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case config.DBDriverPostgres:
		return "postgres", nil
	case config.DBDriverSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported migration driver %q", driver)
	}
}

// DriverDir returns the subdirectory holding migrations for driver.
func DriverDir(root, driver string) string {
	return path.Join(root, strings.ToLower(strings.TrimSpace(driver)))
}

// Embedded exposes the compiled-in migrations for driver.
func Embedded(driver string) (fs.FS, error) {
	if _, err := Dialect(driver); err != nil {
		return nil, err
	}
	return fs.Sub(embedded, DriverDir("migrations", driver))
}

// prepare points goose at either the embedded migrations (dir == "") or an
// on-disk directory and returns the directory goose should read.
func prepare(driver, dir string) (string, error) {
	dialect, err := Dialect(driver)
	if err != nil {
		return "", err
	}
	if err := goose.SetDialect(dialect); err != nil {
		return "", fmt.Errorf("set goose dialect: %w", err)
	}
	if dir != "" {
		goose.SetBaseFS(nil)
		return DriverDir(dir, driver), nil
	}
	sub, err := Embedded(driver)
	if err != nil {
		return "", err
	}
	goose.SetBaseFS(sub)
	return ".", nil
}

// Run executes a goose command against db. An empty dir uses the embedded
// migrations.
func Run(ctx context.Context, db *sql.DB, driver, dir, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}

	resolved, err := prepare(driver, dir)
	if err != nil {
		return err
	}

	if err := goose.RunContext(ctx, command, db, resolved, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion migrates up or down to the requested version.
func MigrateToVersion(ctx context.Context, db *sql.DB, driver, dir, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}

	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	resolved, err := prepare(driver, dir)
	if err != nil {
		return err
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, resolved, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
		return nil
	default:
		if err := goose.DownToContext(ctx, db, resolved, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
		return nil
	}
}
