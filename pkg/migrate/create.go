package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/keepsake-app/keepsake-backend/pkg/config"
)

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

var supportedDrivers = []string{config.DBDriverPostgres, config.DBDriverSQLite}

// CreateSQLMigration writes one goose SQL skeleton per supported driver, all
// sharing a version: <root>/<driver>/<YYYYMMDDHHMMSS>_<name>.sql
func CreateSQLMigration(root, name string) ([]string, error) {
	if root == "" {
		return nil, fmt.Errorf("dir is required")
	}

	safe := sanitizeName(name)
	if safe == "" {
		return nil, fmt.Errorf("name %q results in empty sanitized filename", name)
	}

	version := time.Now().UTC().Format("20060102150405")
	filename := fmt.Sprintf("%s_%s.sql", version, safe)

	body := fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
-- %s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %s
-- +goose StatementEnd
`, safe, safe)

	var created []string
	for _, driver := range supportedDrivers {
		dir := DriverDir(root, driver)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return created, fmt.Errorf("mkdir %q: %w", dir, err)
		}
		full := filepath.Join(dir, filename)
		if _, err := os.Stat(full); err == nil {
			return created, fmt.Errorf("migration already exists: %s", full)
		}
		if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
			return created, fmt.Errorf("write migration %q: %w", full, err)
		}
		created = append(created, full)
	}
	return created, nil
}

func sanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}
