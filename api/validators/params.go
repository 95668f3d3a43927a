package validators

import (
	"strconv"
	"strings"

	pkgerrors "github.com/keepsake-app/keepsake-backend/pkg/errors"
)

// ParseID parses a positive integer identifier taken from a path segment.
func ParseID(raw, field string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, field+" must be a positive integer").WithDetails(map[string]any{"field": field, "value": raw})
	}
	return value, nil
}

// ParseOptionalInt parses a form value; blank input yields defaultVal.
func ParseOptionalInt(raw, field string, defaultVal int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, field+" must be an integer").WithDetails(map[string]any{"field": field, "value": raw})
	}
	return value, nil
}
