package db

import (
	"context"
	"errors"

	pkgerrors "github.com/keepsake-app/keepsake-backend/pkg/errors"
)

// WrapError tags a database failure so the HTTP layer reports it as a
// dependency outage. Cancellations keep their context error.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, message)
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
