package models

import "time"

// WishlistItem is a wanted gift. Price keeps the text the client sent.
type WishlistItem struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ItemName    string    `gorm:"column:item_name;not null"`
	Emoji       string    `gorm:"column:emoji;not null"`
	Store       string    `gorm:"column:store;not null"`
	Link        *string   `gorm:"column:link"`
	Price       *string   `gorm:"column:price"`
	ImageURL    *string   `gorm:"column:image_url"`
	OrderIndex  int       `gorm:"column:order_index;not null"`
	Purchased   bool      `gorm:"column:purchased;not null"`
	PurchasedBy *string   `gorm:"column:purchased_by"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (WishlistItem) TableName() string {
	return "wishlist"
}
