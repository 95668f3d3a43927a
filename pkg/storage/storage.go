package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("blob not found")

// DefaultContentType is assumed when a blob carries no content type.
const DefaultContentType = "application/octet-stream"

// PutOptions tunes a single write.
type PutOptions struct {
	ContentType string
	// AddRandomSuffix asks the store to make the key unique by inserting a
	// short random token before the extension.
	AddRandomSuffix bool
}

// Object is a blob read back from a store. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Store is the blob surface the services depend on.
type Store interface {
	// Put writes data under key and returns the key actually stored.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) (string, error)
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// WithRandomSuffix turns dir/stem.ext into dir/stem-<8 chars>.ext.
func WithRandomSuffix(key string) string {
	dir, file := path.Split(key)
	ext := path.Ext(file)
	stem := strings.TrimSuffix(file, ext)
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return dir + stem + "-" + token + ext
}

// CleanKey normalizes a client supplied key and rejects traversal.
func CleanKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("blob key is required")
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return "", errors.New("blob key must not contain '..'")
		}
	}
	return path.Clean(key), nil
}
