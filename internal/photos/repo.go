package photos

import (
	"context"
	"time"

	"github.com/keepsake-app/keepsake-backend/internal/repo"
	"github.com/keepsake-app/keepsake-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists photo rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.Photo, error)
	Create(ctx context.Context, photo *models.Photo) error
	Update(ctx context.Context, id int64, input PhotoInput) error
	UpdateOrder(ctx context.Context, id int64, orderIndex int) error
}

type repository struct {
	repo.Base
}

// NewRepository builds a photo repository bound to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Base.WithTx(tx)}
}

// List returns every photo ordered by position, ties by insertion order.
func (r *repository) List(ctx context.Context) ([]models.Photo, error) {
	var rows []models.Photo
	err := r.DB(ctx).
		Order("order_index ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Create(ctx context.Context, photo *models.Photo) error {
	return r.DB(ctx).Create(photo).Error
}

// Update rewrites the editable columns. Unknown ids are not an error.
func (r *repository) Update(ctx context.Context, id int64, input PhotoInput) error {
	return r.DB(ctx).
		Model(&models.Photo{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"image_url":   input.ImageURL,
			"caption":     optionalText(input.Caption),
			"order_index": input.OrderIndex,
			"updated_at":  time.Now().UTC(),
		}).Error
}

// UpdateOrder touches order_index only; updated_at is left alone.
func (r *repository) UpdateOrder(ctx context.Context, id int64, orderIndex int) error {
	return r.DB(ctx).
		Model(&models.Photo{}).
		Where("id = ?", id).
		UpdateColumn("order_index", orderIndex).Error
}
