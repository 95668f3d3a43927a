package auth

import (
	"crypto/subtle"
	"fmt"

	pkgerrors "github.com/keepsake-app/keepsake-backend/pkg/errors"
	"github.com/keepsake-app/keepsake-backend/pkg/security"
)

// ErrInvalidPassword is returned by Authorize for a wrong or missing password.
var ErrInvalidPassword = pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid password")

// Gate checks the shared admin password.
type Gate struct {
	secret []byte
	hash   string
}

// NewGate builds a gate. A non-empty hash takes precedence over the plaintext
// secret.
func NewGate(secret, hash string) (*Gate, error) {
	if hash != "" {
		if err := security.ValidateHash(hash); err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
		return &Gate{hash: hash}, nil
	}
	if secret == "" {
		return nil, fmt.Errorf("admin secret is required")
	}
	return &Gate{secret: []byte(secret)}, nil
}

// Verify reports whether supplied matches the configured secret.
func (g *Gate) Verify(supplied string) bool {
	if g == nil {
		return false
	}
	if g.hash != "" {
		ok, err := security.VerifyPassword(supplied, g.hash)
		return err == nil && ok
	}
	return subtle.ConstantTimeCompare([]byte(supplied), g.secret) == 1
}

// Authorize is Verify as an error for handlers.
func (g *Gate) Authorize(supplied string) error {
	if !g.Verify(supplied) {
		return ErrInvalidPassword
	}
	return nil
}
