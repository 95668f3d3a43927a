package photos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/keepsake-app/keepsake-backend/internal/media"
	"github.com/keepsake-app/keepsake-backend/pkg/db"
	"github.com/keepsake-app/keepsake-backend/pkg/db/models"
	pkgerrors "github.com/keepsake-app/keepsake-backend/pkg/errors"
	"github.com/keepsake-app/keepsake-backend/pkg/logger"
	"github.com/keepsake-app/keepsake-backend/pkg/storage"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the photo gallery operations.
type Service interface {
	List(ctx context.Context) ([]Photo, error)
	Create(ctx context.Context, input PhotoInput) (int64, error)
	Update(ctx context.Context, id int64, input PhotoInput) error
	Reorder(ctx context.Context, updates []OrderUpdate) error
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
	Open(ctx context.Context, key string) (*storage.Object, error)
}

// ServiceParams groups dependencies for the photo service.
type ServiceParams struct {
	Repo   Repository
	Tx     txRunner
	Blobs  storage.Store
	Logger *logger.Logger
	Now    func() time.Time
}

type service struct {
	repo  Repository
	tx    txRunner
	blobs storage.Store
	logg  *logger.Logger
	now   func() time.Time
}

// NewService builds the photo service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("photo repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Blobs == nil {
		return nil, fmt.Errorf("blob store required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:  params.Repo,
		tx:    params.Tx,
		blobs: params.Blobs,
		logg:  logg,
		now:   now,
	}, nil
}

func (s *service) List(ctx context.Context) ([]Photo, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, db.WrapError(err, "list photos")
	}
	out := make([]Photo, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, input PhotoInput) (int64, error) {
	row := &models.Photo{
		ImageURL:   input.ImageURL,
		Caption:    optionalText(input.Caption),
		OrderIndex: input.OrderIndex,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return 0, db.WrapError(err, "create photo")
	}
	return row.ID, nil
}

func (s *service) Update(ctx context.Context, id int64, input PhotoInput) error {
	if err := s.repo.Update(ctx, id, input); err != nil {
		return db.WrapError(err, "update photo")
	}
	return nil
}

// Reorder applies every position change in one transaction.
func (s *service) Reorder(ctx context.Context, updates []OrderUpdate) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		for _, u := range updates {
			if err := txRepo.UpdateOrder(ctx, u.ID, u.OrderIndex); err != nil {
				return fmt.Errorf("photo %d: %w", u.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return db.WrapError(err, "reorder photos")
	}
	return nil
}

// Upload stores the file and inserts a row pointing at the stored key. When
// the insert fails the blob is removed again.
func (s *service) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	key := media.PhotoKey(s.now(), input.FileName)
	contentType := media.ContentType(input.ContentType, input.Data)

	stored, err := s.blobs.Put(ctx, key, bytes.NewReader(input.Data), storage.PutOptions{
		ContentType:     contentType,
		AddRandomSuffix: true,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "Failed to upload image")
	}

	row := &models.Photo{
		ImageURL:   stored,
		Caption:    optionalString(input.Caption),
		OrderIndex: input.OrderIndex,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		if cleanupErr := s.blobs.Delete(ctx, stored); cleanupErr != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{"blob_key": stored})
			s.logg.Error(logCtx, "photos.upload.cleanup_failed", cleanupErr)
		}
		return nil, db.WrapError(err, "create uploaded photo")
	}

	return &UploadResult{Success: true, ID: row.ID, URL: stored}, nil
}

// Open fetches a blob for streaming. Every failure is reported as not found.
func (s *service) Open(ctx context.Context, key string) (*storage.Object, error) {
	if strings.TrimSpace(key) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "No path provided")
	}
	obj, err := s.blobs.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"blob_key": key, "error": err.Error()}), "photos.serve.blob_error")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "Image not found")
	}
	obj.ContentType = media.ServeContentType(obj.ContentType)
	return obj, nil
}
