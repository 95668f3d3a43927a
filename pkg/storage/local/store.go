package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/keepsake-app/keepsake-backend/pkg/storage"
)

// Store keeps blobs as plain files under a root directory. Content types are
// sniffed on read since the filesystem keeps no metadata.
type Store struct {
	root string
}

var _ storage.Store = (*Store)(nil)

func New(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("local storage root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}
	return &Store{root: abs}, nil
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) path(key string) (string, string, error) {
	clean, err := storage.CleanKey(key)
	if err != nil {
		return "", "", err
	}
	return clean, filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func (s *Store) Put(ctx context.Context, key string, data io.Reader, opts storage.PutOptions) (string, error) {
	if opts.AddRandomSuffix {
		key = storage.WithRandomSuffix(key)
	}
	clean, full, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("creating blob directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("creating temp blob: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return "", fmt.Errorf("committing blob: %w", err)
	}
	return clean, nil
}

func (s *Store) Get(ctx context.Context, key string) (*storage.Object, error) {
	_, full, err := s.path(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, storage.ErrNotFound
	}

	mtype, err := mimetype.DetectFile(full)
	if err != nil {
		return nil, fmt.Errorf("detecting content type: %w", err)
	}

	f, err := os.Open(full)
	if err != nil {
		return nil, err
	}
	return &storage.Object{
		Body:        f,
		ContentType: mtype.String(),
		Size:        info.Size(),
	}, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, full, err := s.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Ping confirms the root is still a writable directory.
func (s *Store) Ping(ctx context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("storage root %s is not a directory", s.root)
	}
	f, err := os.CreateTemp(s.root, ".ping-*")
	if err != nil {
		return fmt.Errorf("storage root not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
