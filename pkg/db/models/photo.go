package models

import "time"

// Photo is a gallery entry pointing at a blob key.
type Photo struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ImageURL   string    `gorm:"column:image_url;not null"`
	Caption    *string   `gorm:"column:caption"`
	OrderIndex int       `gorm:"column:order_index;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Photo) TableName() string {
	return "photos"
}
