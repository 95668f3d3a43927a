package wishlist

import (
	"strings"
	"time"

	"github.com/keepsake-app/keepsake-backend/pkg/db/models"
	"github.com/keepsake-app/keepsake-backend/pkg/types"
)

const (
	DefaultEmoji = "🎁"
	DefaultStore = "other"
)

// Item is the API representation of a wishlist row.
type Item struct {
	ID          int64     `json:"id"`
	ItemName    string    `json:"item_name"`
	Emoji       string    `json:"emoji"`
	Store       string    `json:"store"`
	Link        *string   `json:"link"`
	Price       *string   `json:"price"`
	ImageURL    *string   `json:"image_url"`
	OrderIndex  int       `json:"order_index"`
	Purchased   bool      `json:"purchased"`
	PurchasedBy *string   `json:"purchased_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemInput is the client-editable part of a wishlist item. Price accepts a
// JSON string or number.
type ItemInput struct {
	ItemName   string          `json:"item_name" validate:"required"`
	Emoji      string          `json:"emoji"`
	Store      string          `json:"store"`
	Link       *string         `json:"link"`
	Price      types.LooseText `json:"price"`
	ImageURL   *string         `json:"image_url"`
	OrderIndex int             `json:"order_index"`
}

// PurchaseInput toggles the purchased flag.
type PurchaseInput struct {
	Purchased   bool    `json:"purchased"`
	PurchasedBy *string `json:"purchased_by"`
}

// OrderUpdate moves one item to a new position.
type OrderUpdate struct {
	ID         int64 `json:"id" validate:"required"`
	OrderIndex int   `json:"order_index"`
}

// ImageInput is an image received through multipart upload.
type ImageInput struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ImageResult reports where an uploaded image was stored.
type ImageResult struct {
	URL     string `json:"url"`
	Success bool   `json:"success"`
}

// columns holds the normalized values written for an ItemInput.
type columns struct {
	itemName   string
	emoji      string
	store      string
	link       *string
	price      *string
	imageURL   *string
	orderIndex int
}

func normalize(input ItemInput) columns {
	emoji := input.Emoji
	if emoji == "" {
		emoji = DefaultEmoji
	}
	store := input.Store
	if store == "" {
		store = DefaultStore
	}
	return columns{
		itemName:   input.ItemName,
		emoji:      emoji,
		store:      store,
		link:       optionalText(input.Link),
		price:      optionalText(input.Price.Ptr()),
		imageURL:   optionalText(input.ImageURL),
		orderIndex: input.OrderIndex,
	}
}

func (c columns) model() *models.WishlistItem {
	return &models.WishlistItem{
		ItemName:   c.itemName,
		Emoji:      c.emoji,
		Store:      c.store,
		Link:       c.link,
		Price:      c.price,
		ImageURL:   c.imageURL,
		OrderIndex: c.orderIndex,
	}
}

func (c columns) updates() map[string]any {
	return map[string]any{
		"item_name":   c.itemName,
		"emoji":       c.emoji,
		"store":       c.store,
		"link":        c.link,
		"price":       c.price,
		"image_url":   c.imageURL,
		"order_index": c.orderIndex,
	}
}

func fromModel(m models.WishlistItem) Item {
	return Item{
		ID:          m.ID,
		ItemName:    m.ItemName,
		Emoji:       m.Emoji,
		Store:       m.Store,
		Link:        m.Link,
		Price:       m.Price,
		ImageURL:    m.ImageURL,
		OrderIndex:  m.OrderIndex,
		Purchased:   m.Purchased,
		PurchasedBy: m.PurchasedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func optionalText(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}

// purchaser keeps the buyer name only while the item is purchased.
func purchaser(input PurchaseInput) *string {
	if !input.Purchased || input.PurchasedBy == nil || strings.TrimSpace(*input.PurchasedBy) == "" {
		return nil
	}
	return input.PurchasedBy
}
