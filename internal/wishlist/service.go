package wishlist

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/keepsake-app/keepsake-backend/internal/media"
	"github.com/keepsake-app/keepsake-backend/pkg/db"
	pkgerrors "github.com/keepsake-app/keepsake-backend/pkg/errors"
	"github.com/keepsake-app/keepsake-backend/pkg/logger"
	"github.com/keepsake-app/keepsake-backend/pkg/storage"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes wishlist operations.
type Service interface {
	List(ctx context.Context) ([]Item, error)
	Create(ctx context.Context, input ItemInput) (int64, error)
	Update(ctx context.Context, id int64, input ItemInput) error
	Delete(ctx context.Context, id int64) error
	SetPurchased(ctx context.Context, id int64, input PurchaseInput) error
	Reorder(ctx context.Context, updates []OrderUpdate) error
	UploadImage(ctx context.Context, input ImageInput) (*ImageResult, error)
}

// ServiceParams groups dependencies for the wishlist service.
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

// NewService builds the wishlist service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("wishlist repository required")
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

func (s *service) List(ctx context.Context) ([]Item, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, db.WrapError(err, "list wishlist")
	}
	out := make([]Item, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, input ItemInput) (int64, error) {
	row := normalize(input).model()
	if err := s.repo.Create(ctx, row); err != nil {
		return 0, db.WrapError(err, "create wishlist item")
	}
	return row.ID, nil
}

// Update rewrites every editable column. Unknown ids are not an error.
func (s *service) Update(ctx context.Context, id int64, input ItemInput) error {
	if err := s.repo.Update(ctx, id, normalize(input).updates()); err != nil {
		return db.WrapError(err, "update wishlist item")
	}
	return nil
}

// Delete removes the row only; an uploaded image stays in the blob store.
func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return db.WrapError(err, "delete wishlist item")
	}
	return nil
}

func (s *service) SetPurchased(ctx context.Context, id int64, input PurchaseInput) error {
	if err := s.repo.SetPurchased(ctx, id, input.Purchased, purchaser(input)); err != nil {
		return db.WrapError(err, "set wishlist purchase")
	}
	return nil
}

func (s *service) Reorder(ctx context.Context, updates []OrderUpdate) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		for _, u := range updates {
			if err := txRepo.UpdateOrder(ctx, u.ID, u.OrderIndex); err != nil {
				return fmt.Errorf("wishlist item %d: %w", u.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return db.WrapError(err, "reorder wishlist")
	}
	return nil
}

// UploadImage stores an item image and returns its key. No row is touched;
// the client saves the key through Create or Update.
func (s *service) UploadImage(ctx context.Context, input ImageInput) (*ImageResult, error) {
	key := media.WishlistImageKey(s.now(), input.FileName)
	stored, err := s.blobs.Put(ctx, key, bytes.NewReader(input.Data), storage.PutOptions{
		ContentType: media.ContentType(input.ContentType, input.Data),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "Failed to upload image")
	}
	s.logg.Info(s.logg.WithField(ctx, "blob_key", stored), "wishlist.image.uploaded")
	return &ImageResult{URL: stored, Success: true}, nil
}
