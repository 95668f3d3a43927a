package wishlist

import (
	"context"
	"time"

	"github.com/keepsake-app/keepsake-backend/internal/repo"
	"github.com/keepsake-app/keepsake-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists wishlist rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.WishlistItem, error)
	Create(ctx context.Context, item *models.WishlistItem) error
	Update(ctx context.Context, id int64, values map[string]any) error
	Delete(ctx context.Context, id int64) error
	SetPurchased(ctx context.Context, id int64, purchased bool, purchasedBy *string) error
	UpdateOrder(ctx context.Context, id int64, orderIndex int) error
}

type repository struct {
	repo.Base
}

// NewRepository builds a wishlist repository bound to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Base.WithTx(tx)}
}

func (r *repository) List(ctx context.Context) ([]models.WishlistItem, error) {
	var rows []models.WishlistItem
	err := r.DB(ctx).
		Order("order_index ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Create(ctx context.Context, item *models.WishlistItem) error {
	return r.DB(ctx).Create(item).Error
}

func (r *repository) Update(ctx context.Context, id int64, values map[string]any) error {
	values["updated_at"] = time.Now().UTC()
	return r.DB(ctx).
		Model(&models.WishlistItem{}).
		Where("id = ?", id).
		Updates(values).Error
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.WishlistItem{}).Error
}

func (r *repository) SetPurchased(ctx context.Context, id int64, purchased bool, purchasedBy *string) error {
	return r.DB(ctx).
		Model(&models.WishlistItem{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"purchased":    purchased,
			"purchased_by": purchasedBy,
			"updated_at":   time.Now().UTC(),
		}).Error
}

func (r *repository) UpdateOrder(ctx context.Context, id int64, orderIndex int) error {
	return r.DB(ctx).
		Model(&models.WishlistItem{}).
		Where("id = ?", id).
		UpdateColumn("order_index", orderIndex).Error
}
